package policy

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Loader produces a fresh snapshot from persistent state.
type Loader interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// VersionSource reports the latest committed snapshot version.
type VersionSource interface {
	CurrentVersion(ctx context.Context) (int64, error)
}

// Store publishes immutable snapshots. Readers pin Current() once at the
// start of an evaluation; writers bump the version counter and the next
// reader triggers a reload. Concurrent reloads for the same version
// collapse into one.
type Store struct {
	loader   Loader
	versions VersionSource
	logger   *slog.Logger
	current  atomic.Pointer[Snapshot]
	group    singleflight.Group
}

// NewStore constructs the snapshot store.
func NewStore(loader Loader, versions VersionSource, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{loader: loader, versions: versions, logger: logger}
}

// Current returns the snapshot for the latest committed version. A failure
// to determine or load that version is an infrastructure failure, never a
// silently stale answer.
func (s *Store) Current(ctx context.Context) (*Snapshot, error) {
	ver, err := s.versions.CurrentVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("policy: snapshot unavailable: %w", err)
	}
	if cached := s.current.Load(); cached != nil && cached.Version() >= ver {
		return cached, nil
	}
	result, err, shared := s.group.Do(fmt.Sprintf("load:%d", ver), func() (interface{}, error) {
		snap, err := s.loader.Load(ctx)
		if err != nil {
			return nil, err
		}
		s.current.Store(snap)
		return snap, nil
	})
	if err != nil {
		return nil, fmt.Errorf("policy: snapshot unavailable: %w", err)
	}
	if shared {
		s.logger.Debug("snapshot reload collapsed", slog.Int64("version", ver))
	}
	return result.(*Snapshot), nil
}

// Warm loads the snapshot eagerly, typically at startup or from the
// background warmup job.
func (s *Store) Warm(ctx context.Context) error {
	_, err := s.Current(ctx)
	return err
}
