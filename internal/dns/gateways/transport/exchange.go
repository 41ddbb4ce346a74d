// Package transport implements the client side of DNS-over-UDP: a single
// query/response exchange against one remote nameserver.
package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/rrwalk/rrwalk/internal/dns/common/log"
	"github.com/rrwalk/rrwalk/internal/dns/domain"
	"github.com/rrwalk/rrwalk/internal/dns/gateways/wire"
)

// UDPExchanger sends one query and waits for one matching response over
// UDP, on an ephemeral local socket opened fresh for each call.
type UDPExchanger struct {
	codec  wire.MessageCodec
	logger log.Logger
}

// NewUDPExchanger builds an exchanger backed by the given codec and logger.
func NewUDPExchanger(codec wire.MessageCodec, logger log.Logger) *UDPExchanger {
	return &UDPExchanger{codec: codec, logger: logger}
}

type exchangeResult struct {
	msg domain.Message
	err error
}

// Exchange sends query to serverAddr ("host:port") and returns the first
// response datagram whose ID matches, or an error if the context deadline
// passes first or the socket fails. The socket is always closed before
// Exchange returns, on every code path.
func (e *UDPExchanger) Exchange(ctx context.Context, serverAddr string, query domain.Message) (domain.Message, error) {
	raddr, err := net.ResolveUDPAddr("udp4", serverAddr)
	if err != nil {
		return domain.Message{}, fmt.Errorf("resolve upstream address %s: %w", serverAddr, err)
	}

	conn, err := net.DialUDP("udp4", nil, raddr)
	if err != nil {
		return domain.Message{}, fmt.Errorf("dial upstream %s: %w", serverAddr, err)
	}
	defer conn.Close()

	wireQuery, err := e.codec.Encode(query, time.Now())
	if err != nil {
		return domain.Message{}, fmt.Errorf("encode query: %w", err)
	}

	if _, err := conn.Write(wireQuery); err != nil {
		return domain.Message{}, fmt.Errorf("send query to %s: %w", serverAddr, err)
	}

	resultCh := make(chan exchangeResult, 1)
	go e.readResponse(conn, query.Header.ID, resultCh)

	select {
	case <-ctx.Done():
		e.logger.Debug(map[string]any{
			"server": serverAddr,
			"id":     query.Header.ID,
		}, "upstream exchange canceled")
		return domain.Message{}, ctx.Err()
	case result := <-resultCh:
		return result.msg, result.err
	}
}

func (e *UDPExchanger) readResponse(conn *net.UDPConn, expectedID uint16, out chan<- exchangeResult) {
	buf := make([]byte, 512)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			out <- exchangeResult{err: fmt.Errorf("read upstream response: %w", err)}
			return
		}

		msg, err := e.codec.Decode(buf[:n], time.Now())
		if err != nil {
			out <- exchangeResult{err: fmt.Errorf("%w: decode upstream response", domain.ErrFormat)}
			return
		}
		if msg.Header.ID != expectedID {
			// A datagram whose ID does not match the query is ignored;
			// keep waiting for the reply to the one we actually sent.
			continue
		}
		out <- exchangeResult{msg: msg}
		return
	}
}
