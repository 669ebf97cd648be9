package audit

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"
)

// WriteCSV renders entries as a compliance CSV export.
func WriteCSV(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"id", "tenant_id", "actor_id", "domain", "resource_type", "resource_id", "action", "decision", "reason", "matched_policy_id", "via_delegation", "snapshot_version", "at"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, e := range entries {
		record := []string{
			e.ID,
			e.TenantID,
			e.ActorID,
			string(e.Domain),
			e.ResourceType,
			e.ResourceID,
			e.Action,
			e.Decision,
			e.Reason,
			e.MatchedPolicyID,
			e.ViaDelegation,
			strconv.FormatInt(e.SnapshotVersion, 10),
			e.At.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
