package storage

import (
	"context"
	"time"
)

// ArchiveRepository persists raw inbound callback payloads verbatim, before
// any validation or matching runs, so no gateway event is ever silently lost.
// Archival is diagnostic: failures are logged by callers and never block the
// payment pipeline.
type ArchiveRepository interface {
	// Archive stores the raw payload under a key derived from the
	// transaction id and receipt time, returning the object path
	Archive(ctx context.Context, transID string, receivedAt time.Time, payload []byte) (string, error)
}
