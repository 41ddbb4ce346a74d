package domain

import "errors"

// ErrFormat signals that a wire buffer violates the message format: an
// oversized label, a name over 255 bytes, an out-of-range or looping
// compression pointer, a header with QDCOUNT of zero, or a buffer shorter
// than the fixed header. It is always the caller's fault, never the network's.
var ErrFormat = errors.New("dns: malformed message")
