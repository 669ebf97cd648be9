// Package jobs holds the asynq background work: the audit retention sweep,
// the delegation expiry report, and the snapshot warmup.
package jobs

import "github.com/hibiken/asynq"

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAuditRetentionSweep deletes audit records past the configured
	// retention period. Nothing else ever deletes from the access log.
	TaskAuditRetentionSweep = "audit:retention_sweep"
	// TaskDelegationExpiryReport logs delegations lapsing within the next
	// day. Expired delegations are never deleted, only reported.
	TaskDelegationExpiryReport = "delegation:expiry_report"
	// TaskSnapshotWarmup loads the current snapshot so the first evaluation
	// after a deploy or version bump does not pay the reload.
	TaskSnapshotWarmup = "snapshot:warmup"
)

// NewAuditRetentionSweepTask constructs the retention sweep task.
func NewAuditRetentionSweepTask() *asynq.Task {
	return asynq.NewTask(TaskAuditRetentionSweep, nil)
}

// NewDelegationExpiryReportTask constructs the expiry report task.
func NewDelegationExpiryReportTask() *asynq.Task {
	return asynq.NewTask(TaskDelegationExpiryReport, nil)
}

// NewSnapshotWarmupTask constructs the warmup task.
func NewSnapshotWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskSnapshotWarmup, nil)
}
