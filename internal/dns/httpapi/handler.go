package httpapi

import (
	"encoding/json"
	"math/rand/v2"
	"net"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rrwalk/rrwalk/internal/dns/common/log"
	"github.com/rrwalk/rrwalk/internal/dns/common/utils"
	"github.com/rrwalk/rrwalk/internal/dns/domain"
)

// Handler serves the /resolve forwarding endpoint.
type Handler struct {
	resolver  Resolver
	exchanger Exchanger
	logger    log.Logger
	validate  *validator.Validate
}

// NewHandler builds a Handler bound to a resolution engine (the normal
// path) and a raw exchanger (the host-bypass path).
func NewHandler(resolver Resolver, exchanger Exchanger, logger log.Logger) *Handler {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("dns_name", validDNSName)
	return &Handler{resolver: resolver, exchanger: exchanger, logger: logger, validate: v}
}

// Routes returns a ServeMux with the endpoint registered, ready to pass to
// http.Server or ListenAndServe directly.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/resolve", h.handleResolve)
	return mux
}

func validDNSName(fl validator.FieldLevel) bool {
	return utils.IsValidDomainName(fl.Field().String())
}

// resolveQuery is the /resolve?domain=&type=&host= query string, validated
// with go-playground/validator instead of hand-rolled shape checks.
type resolveQuery struct {
	Domain string `validate:"required,dns_name"`
	Type   string `validate:"required,oneof=A AAAA NS CNAME SOA TXT"`
	Host   string `validate:"omitempty,ipv4"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := resolveQuery{
		Domain: r.URL.Query().Get("domain"),
		Type:   strings.ToUpper(r.URL.Query().Get("type")),
		Host:   r.URL.Query().Get("host"),
	}
	if err := h.validate.Struct(q); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	question, err := domain.NewQuestion(q.Domain, domain.RRTypeFromString(q.Type), domain.RRClassIN)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	query := domain.NewQuery(uint16(rand.IntN(65536)), question)
	ctx := r.Context()

	var response domain.Message
	if q.Host != "" {
		response, err = h.exchanger.Exchange(ctx, net.JoinHostPort(q.Host, "53"), query)
		if err != nil {
			h.logger.Warn(map[string]any{"host": q.Host, "error": err.Error()}, "forwarding exchange failed")
			writeJSONError(w, http.StatusBadGateway, err.Error())
			return
		}
	} else {
		response = h.resolver.Resolve(ctx, query)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(renderMessage(response)); err != nil {
		h.logger.Error(map[string]any{"error": err.Error()}, "failed to encode resolve response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: msg})
}
