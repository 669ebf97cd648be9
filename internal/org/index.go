package org

import (
	"fmt"
	"strings"

	"github.com/veritract/veritract/internal/shared"
)

// Index answers subtree containment over one immutable version of the org
// forest without per-request graph walks. Writers publish a replacement
// Index when the tree version advances; an Index itself never mutates.
type Index struct {
	version int64
	paths   map[string]string
	units   map[string]Unit
}

// BuildIndex materializes containment lookup from unit paths. A unit whose
// Path does not terminate in its own ID is a configuration defect.
func BuildIndex(version int64, units []Unit) (*Index, error) {
	paths := make(map[string]string, len(units))
	byID := make(map[string]Unit, len(units))
	for _, u := range units {
		if u.ID == "" || u.TenantID == "" {
			return nil, fmt.Errorf("org: unit missing id or tenant: %+v", u)
		}
		path := strings.Trim(u.Path, "/")
		if path == "" {
			path = u.ID
		}
		if !strings.HasSuffix(path, u.ID) {
			return nil, fmt.Errorf("org: unit %s path %q does not end in its own id", u.ID, u.Path)
		}
		if _, ok := byID[u.ID]; ok {
			return nil, fmt.Errorf("org: duplicate unit %s", u.ID)
		}
		paths[u.ID] = path
		u.Path = path
		byID[u.ID] = u
	}
	return &Index{version: version, paths: paths, units: byID}, nil
}

// Version identifies the org-tree generation this index was built from.
func (i *Index) Version() int64 { return i.version }

// IsWithin reports whether unitID equals scopeRootID or descends from it.
// Unknown units are outside every scope.
func (i *Index) IsWithin(unitID, scopeRootID string) bool {
	if unitID == scopeRootID {
		_, ok := i.paths[unitID]
		return ok
	}
	unitPath, ok := i.paths[unitID]
	if !ok {
		return false
	}
	rootPath, ok := i.paths[scopeRootID]
	if !ok {
		return false
	}
	return strings.HasPrefix(unitPath, rootPath+"/")
}

// Unit returns the unit record for an id.
func (i *Index) Unit(id string) (Unit, bool) {
	u, ok := i.units[id]
	return u, ok
}

// CheckVersion rejects lookups pinned to a superseded tree generation,
// forcing callers to refresh their snapshot.
func (i *Index) CheckVersion(pinned int64) error {
	if pinned != i.version {
		return fmt.Errorf("%w: have %d, current %d", shared.ErrStaleSnapshot, pinned, i.version)
	}
	return nil
}
