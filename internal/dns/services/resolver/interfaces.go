package resolver

import (
	"context"
	"net"

	"github.com/rrwalk/rrwalk/internal/dns/domain"
)

// UpstreamClient sends a single query to a remote nameserver and returns its
// response. One Exchange call is one delegation hop of the resolution walk.
type UpstreamClient interface {
	Exchange(ctx context.Context, serverAddr string, query domain.Message) (domain.Message, error)
}

// DNSResponder is what a server transport hands each decoded client query
// to; the resolver package's Engine implements this.
type DNSResponder interface {
	HandleRequest(ctx context.Context, query domain.Message, clientAddr net.Addr) domain.Message
}

// ServerTransport listens for client queries on some network and delivers
// each one to a DNSResponder.
type ServerTransport interface {
	Start(ctx context.Context, handler DNSResponder) error
	Stop() error
	Address() string
}

// AnswerCache is the narrow view of the C5 answer cache the engine needs:
// look an answered question up, and offer a freshly resolved one back.
type AnswerCache interface {
	Get(q domain.Question) ([]domain.ResourceRecord, bool)
	Set(q domain.Question, answers []domain.ResourceRecord)
}
