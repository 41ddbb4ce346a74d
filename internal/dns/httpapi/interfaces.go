// Package httpapi implements the HTTP forwarding endpoint: a single JSON
// GET route that runs one question through the resolution engine, or, when
// a host is supplied, forwards it as one raw exchange against that server.
package httpapi

import (
	"context"

	"github.com/rrwalk/rrwalk/internal/dns/domain"
)

// Resolver is the narrow view of resolver.Engine the handler needs.
type Resolver interface {
	Resolve(ctx context.Context, request domain.Message) domain.Message
}

// Exchanger is the narrow view of transport.UDPExchanger the handler needs
// for the host-bypass path.
type Exchanger interface {
	Exchange(ctx context.Context, serverAddr string, query domain.Message) (domain.Message, error)
}
