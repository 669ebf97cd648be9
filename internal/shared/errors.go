package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates API key authentication failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidScope indicates a scope descriptor whose selector fields do
	// not match its kind. Malformed descriptors are rejected at write time,
	// never at decision time.
	ErrInvalidScope = errors.New("invalid scope descriptor")
	// ErrStaleSnapshot indicates a lookup against a superseded snapshot version.
	ErrStaleSnapshot = errors.New("stale snapshot version")
	// ErrEvaluationFailed indicates the resolver could not evaluate policy;
	// callers must treat it as deny while reporting it distinctly from a
	// policy-driven deny.
	ErrEvaluationFailed = errors.New("evaluation failed")
	// ErrAuditUnavailable indicates the audit sink did not durably commit.
	ErrAuditUnavailable = errors.New("audit write failed")
)
