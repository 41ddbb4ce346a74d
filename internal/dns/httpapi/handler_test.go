package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rrwalk/rrwalk/internal/dns/common/log"
	"github.com/rrwalk/rrwalk/internal/dns/domain"
)

// stubResolver returns a fixed response regardless of the request, and
// records the last request it was handed.
type stubResolver struct {
	response domain.Message
	lastReq  domain.Message
}

func (s *stubResolver) Resolve(_ context.Context, request domain.Message) domain.Message {
	s.lastReq = request
	return s.response
}

// stubExchanger behaves like stubResolver but for the host-bypass path.
type stubExchanger struct {
	response domain.Message
	err      error
	lastAddr string
}

func (s *stubExchanger) Exchange(_ context.Context, serverAddr string, _ domain.Message) (domain.Message, error) {
	s.lastAddr = serverAddr
	return s.response, s.err
}

func answerResponse(t *testing.T) domain.Message {
	t.Helper()
	q, err := domain.NewQuestion("example.com.", domain.RRTypeA, domain.RRClassIN)
	require.NoError(t, err)
	rr, err := domain.NewResourceRecord("example.com.", domain.RRTypeA, domain.RRClassIN, 300, []byte{93, 184, 216, 34}, "93.184.216.34")
	require.NoError(t, err)
	resp := domain.NewQuery(1, q)
	resp.Header.QR = true
	resp.Header.RA = true
	resp.Header.ANCount = 1
	resp.Answers = []domain.ResourceRecord{rr}
	return resp
}

func TestHandleResolveCallsEngineByDefault(t *testing.T) {
	resolver := &stubResolver{response: answerResponse(t)}
	exchanger := &stubExchanger{}
	h := NewHandler(resolver, exchanger, log.NewNoopLogger())

	req := httptest.NewRequest(http.MethodGet, "/resolve?domain=example.com&type=A", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "example.com", resolver.lastReq.Questions[0].Name)
	assert.Empty(t, exchanger.lastAddr)

	var body renderedMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Answers, 1)
	assert.Equal(t, "93.184.216.34", body.Answers[0].Text)
}

func TestHandleResolveWithHostBypassesEngine(t *testing.T) {
	resolver := &stubResolver{}
	exchanger := &stubExchanger{response: answerResponse(t)}
	h := NewHandler(resolver, exchanger, log.NewNoopLogger())

	req := httptest.NewRequest(http.MethodGet, "/resolve?domain=example.com&type=A&host=8.8.8.8", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "8.8.8.8:53", exchanger.lastAddr)
}

func TestHandleResolveRejectsBadDomain(t *testing.T) {
	h := NewHandler(&stubResolver{}, &stubExchanger{}, log.NewNoopLogger())

	req := httptest.NewRequest(http.MethodGet, "/resolve?domain=not_a_domain&type=A", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleResolveRejectsUnknownType(t *testing.T) {
	h := NewHandler(&stubResolver{}, &stubExchanger{}, log.NewNoopLogger())

	req := httptest.NewRequest(http.MethodGet, "/resolve?domain=example.com&type=BOGUS", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleResolveRejectsBadHost(t *testing.T) {
	h := NewHandler(&stubResolver{}, &stubExchanger{}, log.NewNoopLogger())

	req := httptest.NewRequest(http.MethodGet, "/resolve?domain=example.com&type=A&host=not-an-ip", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleResolveRejectsNonGet(t *testing.T) {
	h := NewHandler(&stubResolver{}, &stubExchanger{}, log.NewNoopLogger())

	req := httptest.NewRequest(http.MethodPost, "/resolve?domain=example.com&type=A", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleResolveExchangeFailureYieldsBadGateway(t *testing.T) {
	exchanger := &stubExchanger{err: assert.AnError}
	h := NewHandler(&stubResolver{}, exchanger, log.NewNoopLogger())

	req := httptest.NewRequest(http.MethodGet, "/resolve?domain=example.com&type=A&host=8.8.8.8", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
