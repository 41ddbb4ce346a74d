// Package resolver implements the iterative resolution engine: the piece
// that turns a client question into a chain of upstream exchanges against
// root, TLD, and authoritative servers and returns a single answer.
package resolver

import (
	"context"
	"math/rand/v2"
	"net"
	"strings"
	"time"

	"github.com/rrwalk/rrwalk/internal/dns/common/log"
	"github.com/rrwalk/rrwalk/internal/dns/common/utils"
	"github.com/rrwalk/rrwalk/internal/dns/domain"
)

// EngineOptions bounds a single resolution walk. Zero values fall back to
// the defaults below rather than to unbounded behavior.
type EngineOptions struct {
	RootHints      []string
	MaxIterations  int
	MaxRecursions  int
	MaxQueryTime   time.Duration
	RequestTimeout time.Duration
}

const (
	defaultMaxIterations  = 16
	defaultMaxRecursions  = 32
	defaultMaxQueryTime   = 10 * time.Second
	defaultRequestTimeout = 2 * time.Second
)

// Engine is the C6 resolution engine: it walks the delegation chain from
// the root hints down to an authoritative answer, consulting the answer
// cache first and populating it on a successful terminal lookup.
type Engine struct {
	upstream       UpstreamClient
	cache          AnswerCache
	logger         log.Logger
	rootHints      []string
	maxIterations  int
	maxRecursions  int
	maxQueryTime   time.Duration
	requestTimeout time.Duration
}

// NewEngine builds an Engine bound to the given upstream client and answer
// cache. An empty opts.RootHints falls back to the compiled-in IANA root
// server list.
func NewEngine(upstream UpstreamClient, ac AnswerCache, logger log.Logger, opts EngineOptions) *Engine {
	e := &Engine{
		upstream:       upstream,
		cache:          ac,
		logger:         logger,
		rootHints:      opts.RootHints,
		maxIterations:  opts.MaxIterations,
		maxRecursions:  opts.MaxRecursions,
		maxQueryTime:   opts.MaxQueryTime,
		requestTimeout: opts.RequestTimeout,
	}
	if len(e.rootHints) == 0 {
		e.rootHints = rootHints
	}
	if e.maxIterations <= 0 {
		e.maxIterations = defaultMaxIterations
	}
	if e.maxRecursions <= 0 {
		e.maxRecursions = defaultMaxRecursions
	}
	if e.maxQueryTime <= 0 {
		e.maxQueryTime = defaultMaxQueryTime
	}
	if e.requestTimeout <= 0 {
		e.requestTimeout = defaultRequestTimeout
	}
	return e
}

var _ DNSResponder = (*Engine)(nil)

// HandleRequest satisfies resolver.DNSResponder for the server front end:
// it discards the client address (the engine has no per-client policy) and
// delegates to Resolve.
func (e *Engine) HandleRequest(ctx context.Context, query domain.Message, _ net.Addr) domain.Message {
	return e.Resolve(ctx, query)
}

// Resolve answers a client request. Only the first question is resolved and
// its response returned, matching the single-question behavior the wire
// protocol overwhelmingly exercises; any later questions are not looked at.
func (e *Engine) Resolve(ctx context.Context, request domain.Message) domain.Message {
	if len(request.Questions) == 0 {
		return domain.NewErrorResponse(request.Header.ID, domain.Question{}, domain.FORMERR)
	}

	for _, q := range request.Questions {
		if cached, ok := e.cache.Get(q); ok {
			resp := domain.NewQuery(request.Header.ID, q)
			resp.Header.QR = true
			resp.Header.RA = true
			resp.Header.ANCount = uint16(len(cached))
			resp.Answers = cached
			return resp
		}

		sub := domain.NewQuery(request.Header.ID, q)
		queryCtx, cancel := context.WithTimeout(ctx, e.maxQueryTime)
		result := e.lookup(queryCtx, sub, &walkState{recursions: new(int), originalType: q.Type})
		cancel()

		if !result.IsError() && len(result.Answers) > 0 {
			e.cache.Set(q, result.Answers)
		}
		return result
	}

	return domain.NewErrorResponse(request.Header.ID, request.Questions[0], domain.SERVFAIL)
}

// walkState is shared across a lookup call and every recursive lookup it
// spawns (CNAME chase, glueless NS resolution), so the recursion cap is
// enforced across the whole tree, not per branch.
type walkState struct {
	recursions   *int
	originalType domain.RRType
}

// lookup performs the iterative walk described for a single question: send
// to the current server, then follow answers, glue, or delegation until a
// terminal answer or NAME_ERROR is reached.
func (e *Engine) lookup(ctx context.Context, query domain.Message, st *walkState) domain.Message {
	question := query.Questions[0]
	nextServer := pick(e.rootHints)

	for iter := 0; iter < e.maxIterations; iter++ {
		attemptCtx, cancel := context.WithTimeout(ctx, e.requestTimeout)
		resp, err := e.upstream.Exchange(attemptCtx, net.JoinHostPort(nextServer, "53"), query)
		cancel()
		if err != nil {
			e.logger.Debug(map[string]any{
				"server":   nextServer,
				"error":    err.Error(),
				"question": question.Name,
				"apex":     utils.GetApexDomain(question.Name),
			}, "upstream exchange failed")
			return domain.NewErrorResponse(query.Header.ID, question, domain.NXDOMAIN)
		}

		if resp.Header.RCode == domain.NXDOMAIN {
			return domain.NewErrorResponse(query.Header.ID, question, domain.NXDOMAIN)
		}

		if len(resp.Answers) > 0 {
			return e.followAnswers(ctx, query, question, resp.Answers, st)
		}

		if glue := filterGlueA(resp.Additionals); len(glue) > 0 {
			nextServer = pick(glue).Text
			continue
		}

		if candidates := delegationCandidates(resp.Authorities); len(candidates) > 0 {
			chosen := pick(candidates)
			if chosen.Type == domain.RRTypeSOA {
				return e.nxdomainWithAuthority(query, question, resp)
			}
			if *st.recursions >= e.maxRecursions {
				return domain.NewErrorResponse(query.Header.ID, question, domain.NXDOMAIN)
			}
			*st.recursions++
			nsQuestion, err := domain.NewQuestion(chosen.Name, domain.RRTypeA, question.Class)
			if err != nil {
				return domain.NewErrorResponse(query.Header.ID, question, domain.NXDOMAIN)
			}
			nsResp := e.lookup(ctx, domain.NewQuery(query.Header.ID, nsQuestion), st)
			if len(nsResp.Answers) > 0 {
				nextServer = pick(nsResp.Answers).Text
				continue
			}
		}

		return e.nxdomainWithAuthority(query, question, resp)
	}

	return domain.NewErrorResponse(query.Header.ID, question, domain.NXDOMAIN)
}

// followAnswers appends CNAME-chase results (when the client didn't ask for
// CNAME directly) and builds the terminal response.
func (e *Engine) followAnswers(ctx context.Context, query domain.Message, question domain.Question, answers []domain.ResourceRecord, st *walkState) domain.Message {
	out := append([]domain.ResourceRecord(nil), answers...)

	if st.originalType != domain.RRTypeCNAME {
		for _, rr := range answers {
			if rr.Type != domain.RRTypeCNAME {
				continue
			}
			if *st.recursions >= e.maxRecursions {
				return domain.NewErrorResponse(query.Header.ID, question, domain.NXDOMAIN)
			}
			*st.recursions++
			target := strings.TrimSpace(rr.Text)
			if target == "" {
				continue
			}
			cnameQuestion, err := domain.NewQuestion(target, domain.RRTypeCNAME, question.Class)
			if err != nil {
				continue
			}
			chased := e.lookup(ctx, domain.NewQuery(query.Header.ID, cnameQuestion), st)
			if chased.IsError() {
				return domain.NewErrorResponse(query.Header.ID, question, domain.NXDOMAIN)
			}
			out = append(out, chased.Answers...)
		}
	}

	resp := domain.NewQuery(query.Header.ID, question)
	resp.Header.QR = true
	resp.Header.RA = true
	resp.Header.ANCount = uint16(len(out))
	resp.Answers = out
	return resp
}

// nxdomainWithAuthority builds the NAME_ERROR response the engine returns
// when a delegation dead-ends: no answer, no usable glue, and either an SOA
// authority (explicit NXDOMAIN) or nothing left to try.
func (e *Engine) nxdomainWithAuthority(query domain.Message, question domain.Question, resp domain.Message) domain.Message {
	out := domain.NewErrorResponse(query.Header.ID, question, domain.NXDOMAIN)
	out.Authorities = resp.Authorities
	out.Additionals = resp.Additionals
	out.Header.NSCount = uint16(len(resp.Authorities))
	out.Header.ARCount = uint16(len(resp.Additionals))
	return out
}

// filterGlueA keeps only IPv4 (A) glue records suitable for use as the next
// server to query.
func filterGlueA(records []domain.ResourceRecord) []domain.ResourceRecord {
	glue := make([]domain.ResourceRecord, 0, len(records))
	for _, rr := range records {
		if rr.Type == domain.RRTypeA && len(rr.Data) == 4 {
			glue = append(glue, rr)
		}
	}
	return glue
}

// delegationCandidates copies each NS authority record with its Name replaced
// by the delegation target (the NS's rdata), keeping only entries that look
// like real domain names. SOA authority records are kept unchanged, as the
// NXDOMAIN signal.
func delegationCandidates(authorities []domain.ResourceRecord) []domain.ResourceRecord {
	candidates := make([]domain.ResourceRecord, 0, len(authorities))
	for _, rr := range authorities {
		if rr.Type == domain.RRTypeSOA {
			// An SOA authority is the NXDOMAIN signal itself, not a
			// dialable target, so it skips the domain-shape check below.
			candidates = append(candidates, rr)
			continue
		}
		target := strings.TrimSpace(rr.Text)
		if target == "" || !utils.IsValidDomainName(target) {
			continue
		}
		candidate := rr
		candidate.Name = target
		candidates = append(candidates, candidate)
	}
	return candidates
}

// pick chooses a uniformly random element, for load spread across root
// hints, glue addresses, and delegation candidates alike.
func pick[T any](items []T) T {
	return items[rand.IntN(len(items))]
}
