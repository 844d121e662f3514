// Package broadcast fans leaderboard and round events out to in-process
// subscribers.
package broadcast

// Option applies a configuration option to the InMemoryBroadcaster.
type Option func(*InMemoryBroadcaster)

// WithBufferSize sets the per-subscriber channel buffer size.
func WithBufferSize(size int) Option {
	return func(b *InMemoryBroadcaster) {
		if size > 0 {
			b.bufferSize = size
		}
	}
}
