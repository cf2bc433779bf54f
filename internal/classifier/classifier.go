// Package classifier resolves free-text visitor interests to an exhibition
// zone. A generative-language endpoint is asked first; whenever it is not
// configured, fails, or answers in an unknown shape, a deterministic keyword
// matcher decides instead, so every valid query yields a zone.
package classifier

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sony/gobreaker/v2"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"

	"github.com/zoneheat/zoneheat/internal/conf"
	"github.com/zoneheat/zoneheat/internal/errors"
	"github.com/zoneheat/zoneheat/internal/httpclient"
	"github.com/zoneheat/zoneheat/internal/logger"
	"github.com/zoneheat/zoneheat/internal/observability/metrics"
	"github.com/zoneheat/zoneheat/internal/zone"
)

const (
	componentClassifier = "classifier"
	breakerName         = "classifier-primary"

	defaultMaxOutputTokens = 64
	defaultTimeout         = 8 * time.Second
	defaultBreakerFailures = 5
	defaultBreakerCooldown = 30 * time.Second
	defaultZoneID          = "zone3"
)

// Source tells which path produced a Result.
type Source string

const (
	SourcePrimary           Source = "primary"
	SourceFallbackError     Source = "fallback-error"
	SourceFallbackEmpty     Source = "fallback-empty"
	SourceFallbackException Source = "fallback-exception"
)

// IsFallback reports whether the local matcher produced the result.
func (s Source) IsFallback() bool { return s != SourcePrimary }

// Result is a resolved zone. ZoneID is empty when a primary answer names no
// registered zone; ZoneLabel then carries the answer text verbatim.
type Result struct {
	ZoneLabel string `json:"zone"`
	ZoneID    string `json:"zone_id,omitempty"`
	Source    Source `json:"source"`
}

// Observer receives classifier metrics. *metrics.ClassifierMetrics implements it.
type Observer interface {
	RecordResult(source string)
	RecordRequest(status string, seconds float64)
	RecordCache(hit bool)
	SetBreakerState(name string, state int)
}

type noopObserver struct{}

func (noopObserver) RecordResult(string)           {}
func (noopObserver) RecordRequest(string, float64) {}
func (noopObserver) RecordCache(bool)              {}
func (noopObserver) SetBreakerState(string, int)   {}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient replaces the outbound client.
func WithHTTPClient(c *httpclient.Client) Option {
	return func(r *Resolver) {
		if c != nil {
			r.client = c
		}
	}
}

// WithObserver reports metrics to o.
func WithObserver(o Observer) Option {
	return func(r *Resolver) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithLogger sets the parent logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.log = l
		}
	}
}

// WithKeywordRules replaces the local matcher table.
func WithKeywordRules(rules []KeywordRule) Option {
	return func(r *Resolver) { r.rules = rules }
}

// WithExtractors replaces the response shape extractors.
func WithExtractors(ex []Extractor) Option {
	return func(r *Resolver) { r.extractors = ex }
}

// Resolver maps interest queries to zones. Safe for concurrent use.
type Resolver struct {
	registry   *zone.Registry
	apiKey     string
	endpoint   string
	model      string
	maxTokens  int
	timeout    time.Duration
	client     *httpclient.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	cache      *cache.Cache
	inflight   singleflight.Group
	matcher    *KeywordMatcher
	rules      []KeywordRule
	extractors []Extractor
	observer   Observer
	log        logger.Logger
}

// New builds a Resolver. Every zone the local matcher can return must exist in
// reg; otherwise New fails with an invariant error.
func New(cfg *conf.ClassifierSettings, reg *zone.Registry, opts ...Option) (*Resolver, error) {
	if reg == nil {
		return nil, errors.InvariantError("classifier requires a zone registry")
	}
	var c conf.ClassifierSettings
	if cfg != nil {
		c = *cfg
	}
	if c.MaxOutputTokens <= 0 {
		c.MaxOutputTokens = defaultMaxOutputTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = defaultBreakerFailures
	}
	if c.BreakerCooldown <= 0 {
		c.BreakerCooldown = defaultBreakerCooldown
	}
	if c.DefaultZone == "" {
		c.DefaultZone = defaultZoneID
	}

	r := &Resolver{
		registry:   reg,
		apiKey:     strings.TrimSpace(c.APIKey),
		endpoint:   strings.TrimRight(c.Endpoint, "/"),
		model:      c.Model,
		maxTokens:  c.MaxOutputTokens,
		timeout:    c.Timeout,
		rules:      DefaultKeywordRules,
		extractors: DefaultExtractors(),
		observer:   noopObserver{},
		log:        logger.Global().Module(componentClassifier),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.Module("resolver")

	if !reg.Has(c.DefaultZone) {
		return nil, errors.InvariantError("default zone " + c.DefaultZone + " is not registered")
	}
	r.matcher = NewKeywordMatcher(r.rules, c.DefaultZone)
	for _, id := range r.matcher.ZoneIDs() {
		if !reg.Has(id) {
			return nil, errors.InvariantError("keyword rule references unregistered zone " + id)
		}
	}

	if r.client == nil {
		r.client = httpclient.New(&httpclient.Config{DefaultTimeout: c.Timeout})
	}
	if c.CacheTTL > 0 {
		r.cache = cache.New(c.CacheTTL, 2*c.CacheTTL)
	}

	failures := c.BreakerFailures
	r.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     c.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.observer.SetBreakerState(name, int(to))
			r.log.Warn("classifier breaker state changed",
				logger.String("from", from.String()),
				logger.String("to", to.String()))
		},
	})
	r.observer.SetBreakerState(breakerName, int(gobreaker.StateClosed))

	if r.apiKey == "" {
		r.log.Info("no classifier api key configured, using keyword matching only")
	}
	return r, nil
}

// Classify resolves query to a zone. It fails only for a blank query; all
// upstream failures degrade to the keyword matcher and show up in Source.
func (r *Resolver) Classify(ctx context.Context, query string) (Result, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return Result{}, errors.New(errors.NewStd("query is required")).
			Component(componentClassifier).
			Category(errors.CategoryValidation).
			Build()
	}

	res := r.resolve(ctx, q)
	r.observer.RecordResult(string(res.Source))
	return res, nil
}

func (r *Resolver) resolve(ctx context.Context, q string) Result {
	if r.apiKey == "" {
		r.log.Debug("classifier not configured, using local matcher")
		return r.fallback(q, SourceFallbackError)
	}

	key := cacheKey(q)
	if r.cache != nil {
		if v, ok := r.cache.Get(key); ok {
			if res, ok := v.(Result); ok {
				r.observer.RecordCache(true)
				return res
			}
		}
		r.observer.RecordCache(false)
	}

	if ctx.Err() != nil {
		return r.fallback(q, SourceFallbackException)
	}

	// Concurrent identical misses share one upstream call. It runs detached from
	// every caller, so an aborted request neither fails the other waiters nor
	// counts against the breaker; the call is still bounded by r.timeout.
	ch := r.inflight.DoChan(key, func() (any, error) {
		res, ok := r.primary(context.WithoutCancel(ctx), q)
		if ok && r.cache != nil {
			r.cache.SetDefault(key, res)
		}
		return res, nil
	})

	select {
	case out := <-ch:
		return out.Val.(Result)
	case <-ctx.Done():
		r.log.Debug("caller gave up before the classifier answered", logger.Error(ctx.Err()))
		return r.fallback(q, SourceFallbackException)
	}
}

// primary asks the remote endpoint. ok is false when a fallback result was
// produced instead.
func (r *Resolver) primary(ctx context.Context, q string) (Result, bool) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	payload := generateRequest{
		Prompt:          promptText{Text: buildPrompt(r.registry, q)},
		MaxOutputTokens: r.maxTokens,
	}

	start := time.Now()
	body, err := r.breaker.Execute(func() ([]byte, error) {
		return r.client.PostJSON(callCtx, r.requestURL(), payload)
	})
	elapsed := time.Since(start).Seconds()

	if err != nil {
		r.observer.RecordRequest(metrics.StatusError, elapsed)
		src := sourceForError(err)
		r.log.Warn("classifier request failed, using local matcher",
			logger.String("source", string(src)),
			logger.String("model", r.model),
			logger.Error(err))
		return r.fallback(q, src), false
	}
	r.observer.RecordRequest(metrics.StatusSuccess, elapsed)

	if !gjson.ValidBytes(body) {
		r.log.Warn("classifier returned malformed json, using local matcher",
			logger.Int("bytes", len(body)))
		return r.fallback(q, SourceFallbackException), false
	}

	text, shape := ExtractText(body, r.extractors)
	if text == "" {
		r.log.Info("classifier response had no recognizable text, using local matcher")
		return r.fallback(q, SourceFallbackEmpty), false
	}

	res := Result{ZoneLabel: text, Source: SourcePrimary}
	if z, ok := r.registry.LookupLabel(text); ok {
		res.ZoneID = z.ID
	}
	r.log.Debug("classifier answered",
		logger.String("shape", shape),
		logger.String("zone_id", res.ZoneID))
	return res, true
}

func (r *Resolver) fallback(q string, src Source) Result {
	id, _ := r.matcher.Match(q)
	z, _ := r.registry.Get(id)
	return Result{ZoneLabel: z.Label, ZoneID: z.ID, Source: src}
}

func (r *Resolver) requestURL() string {
	return r.endpoint + "/models/" + url.PathEscape(r.model) + ":generateContent?key=" + url.QueryEscape(r.apiKey)
}

// Configured reports whether a remote classifier will be consulted.
func (r *Resolver) Configured() bool { return r.apiKey != "" }

// BreakerState exposes the primary breaker state for health output.
func (r *Resolver) BreakerState() string { return r.breaker.State().String() }

// sourceForError maps a failed primary call to its fallback tag. A non-2xx
// answer is an error reply; anything else is an exception.
func sourceForError(err error) Source {
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) {
		return SourceFallbackError
	}
	return SourceFallbackException
}

func cacheKey(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
