package replication

import "errors"

var (
	ErrClosed           = errors.New("replication: session closed")
	ErrUnknownObject    = errors.New("replication: unknown object")
	ErrDespawned        = errors.New("replication: object despawned")
	ErrDuplicateReplica = errors.New("replication: replica already connected")
)

// Transport moves encoded envelopes between one participant and the rest of
// the session. Receive never blocks; it returns everything queued since the
// previous call.
type Transport interface {
	Publish(msg []byte) error
	Receive() ([][]byte, error)
	Close() error
}
