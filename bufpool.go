package ustream

import "sync"

// chunkSize is how many bytes a single fill pulls from the source at
// most. A fill also stops right after a newline, so one fill never
// carries much more than one line of interactive input.
const chunkSize = 1024

// chunkPool reuses fill chunks across Readers. This keeps the per-line
// read path allocation-free once warm.
var chunkPool = sync.Pool{
	New: func() any {
		b := make([]byte, chunkSize)
		return &b
	},
}
