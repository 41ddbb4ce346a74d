// Package server implements the client-facing DNS-over-UDP front end: it
// decodes each incoming query, hands it to a resolver.DNSResponder, and
// sends the encoded response back to the querying client.
package server

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rrwalk/rrwalk/internal/dns/common/log"
	"github.com/rrwalk/rrwalk/internal/dns/gateways/wire"
	"github.com/rrwalk/rrwalk/internal/dns/services/resolver"
)

// UDPServer implements resolver.ServerTransport for standard DNS over UDP
// (RFC 1035 section 4.2.1). Each packet is handled on its own goroutine so
// one slow resolution never blocks another client's query.
type UDPServer struct {
	addr   string
	conn   *net.UDPConn
	codec  wire.MessageCodec
	logger log.Logger

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
}

// NewUDPServer creates a UDP server transport bound to addr once Start runs.
func NewUDPServer(addr string, codec wire.MessageCodec, logger log.Logger) *UDPServer {
	return &UDPServer{
		addr:   addr,
		codec:  codec,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Start binds the UDP socket and begins the packet handling loop.
func (s *UDPServer) Start(ctx context.Context, handler resolver.DNSResponder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("udp server already running")
	}

	udpAddr, err := net.ResolveUDPAddr("udp", s.addr)
	if err != nil {
		return fmt.Errorf("resolve bind address %s: %w", s.addr, err)
	}

	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("bind udp socket on %s: %w", s.addr, err)
	}

	s.conn = conn
	s.addr = conn.LocalAddr().String()
	s.running = true

	s.logger.Info(map[string]any{
		"transport": "udp",
		"address":   s.addr,
	}, "dns server listening")

	go s.listenLoop(ctx, handler)
	return nil
}

// Stop closes the socket and signals the listen loop to exit. It returns
// without waiting for the loop or for in-flight packet handlers to finish.
func (s *UDPServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	close(s.stopCh)

	var closeErr error
	if s.conn != nil {
		closeErr = s.conn.Close()
	}
	s.running = false

	s.logger.Info(map[string]any{
		"transport": "udp",
		"address":   s.addr,
	}, "dns server stopped")

	return closeErr
}

// Address returns the bound network address.
func (s *UDPServer) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

func (s *UDPServer) listenLoop(ctx context.Context, handler resolver.DNSResponder) {
	buffer := make([]byte, 512)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		default:
		}

		n, clientAddr, err := s.conn.ReadFromUDP(buffer)
		if err != nil {
			s.mu.RLock()
			running := s.running
			s.mu.RUnlock()
			if !running {
				return
			}
			s.logger.Warn(map[string]any{"error": err.Error()}, "failed to read udp packet")
			continue
		}

		packet := make([]byte, n)
		copy(packet, buffer[:n])
		go s.handlePacket(ctx, packet, clientAddr, handler)
	}
}

func (s *UDPServer) handlePacket(ctx context.Context, data []byte, clientAddr *net.UDPAddr, handler resolver.DNSResponder) {
	now := time.Now()

	query, err := s.codec.Decode(data, now)
	if err != nil {
		// A malformed query is silently dropped: there is no reliable
		// question/ID to reply to and no client to blame yet.
		s.logger.Debug(map[string]any{
			"client": clientAddr.String(),
			"error":  err.Error(),
		}, "dropping malformed query")
		return
	}

	response := handler.HandleRequest(ctx, query, clientAddr)

	wireResp, err := s.codec.Encode(response, now)
	if err != nil {
		s.logger.Error(map[string]any{
			"client": clientAddr.String(),
			"id":     response.Header.ID,
			"error":  err.Error(),
		}, "failed to encode response")
		return
	}

	if _, err := s.conn.WriteToUDP(wireResp, clientAddr); err != nil {
		s.logger.Error(map[string]any{
			"client": clientAddr.String(),
			"id":     response.Header.ID,
			"error":  err.Error(),
		}, "failed to send response")
	}
}

var _ resolver.ServerTransport = &UDPServer{}
