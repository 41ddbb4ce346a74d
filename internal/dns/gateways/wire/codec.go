package wire

import (
	"time"

	"github.com/rrwalk/rrwalk/internal/dns/domain"
)

// MessageCodec encodes and decodes whole DNS messages on the wire. The same
// codec serves both directions: encoding a query to send upstream or a
// response to send to a client, and decoding a query received from a client
// or a response received from upstream.
type MessageCodec interface {
	Encode(msg domain.Message, now time.Time) ([]byte, error)
	Decode(data []byte, now time.Time) (domain.Message, error)
}
