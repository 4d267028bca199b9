package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and adapters return these
// (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: record does not exist in the store
// - ErrCancelled: the user backed out of an interactive flow
// - ErrUnavailable: adapter or backing service temporarily unavailable
var (
	ErrNotFound    = errors.New("not found")
	ErrCancelled   = errors.New("cancelled")
	ErrUnavailable = errors.New("unavailable")
)
