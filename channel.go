package sdp

// Channel is the L2CAP collaborator described in spec §6. Discovery
// never establishes, tears down or MTU-negotiates this channel; that
// is the host Bluetooth stack's job (§1's explicit out-of-scope
// list). The engine only reads, writes and watches for disconnection.
//
// Reserving L2CAP_MIN_OFFSET bytes of headroom at the start of every
// buffer passed to Write is unnecessary in Go
// (no in-place header patching across an allocator boundary the way
// the original C stack needed); the engine instead builds each PDU in
// a freshly sized slice and hands the whole thing to Write.
type Channel interface {
	// Write enqueues b for transmission. It must not block past the
	// point of acceptance by the local transport; per spec §5 this is
	// a non-blocking enqueue, not a round trip.
	Write(b []byte) (int, error)

	// Read blocks until a full L2CAP SDU is available and copies it
	// into b, returning the number of bytes written. Implementations
	// must preserve SDU boundaries: one Read returns exactly one PDU,
	// never a partial one or more than one concatenated.
	Read(b []byte) (int, error)

	// Close releases the channel. It does not go through Discover; a
	// caller that owns the Channel is also responsible for closing it.
	Close() error

	// RemoteAddr returns the address of the device at the other end.
	RemoteAddr() Addr

	// Disconnected returns a channel that is closed when the
	// transport has gone away, proactively or due to an error. A
	// Client uses this to terminate an in-progress discovery with
	// StatusDisconnected.
	Disconnected() <-chan struct{}
}
