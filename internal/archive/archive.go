// Package archive exports expiring events as JSONL to an external
// destination before the retention sweeper deletes them.
package archive

import "context"

// Destination is the interface for an archive target (S3, local file, etc.).
type Destination interface {
	// Write sends the JSONL payload to the destination.
	Write(ctx context.Context, data []byte) error
}
