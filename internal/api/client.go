package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"taskdeck/internal/logging"
)

const (
	DefaultTimeout = 30 * time.Second

	tracerName   = "taskdeck/internal/api"
	maxErrorBody = 1 << 20
)

// TokenSource supplies the bearer token. It is consulted on every call so a logout elsewhere
// takes effect immediately.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource for a fixed value.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) { return string(s), nil }

type Options struct {
	BaseURL  string
	AgentURL string
	// Timeout bounds each call, including reading the response body.
	Timeout    time.Duration
	Tokens     TokenSource
	HTTPClient *http.Client
	Logger     *zap.Logger
	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
}

// Client is the only component that talks to the network.
type Client struct {
	baseURL  string
	agentURL string
	timeout  time.Duration
	tokens   TokenSource
	http     *http.Client
	log      *zap.Logger
	tracer   trace.Tracer
}

func New(opts Options) *Client {
	c := &Client{
		baseURL:  NormalizeBaseURL(opts.BaseURL),
		agentURL: strings.TrimRight(strings.TrimSpace(opts.AgentURL), "/"),
		timeout:  opts.Timeout,
		tokens:   opts.Tokens,
		log:      opts.Logger,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.tokens == nil {
		c.tokens = StaticToken("")
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	tp := opts.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	c.tracer = tp.Tracer(tracerName)

	base := opts.HTTPClient
	if base == nil {
		base = &http.Client{}
	}
	rt := base.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	hc := *base
	hc.Transport = &propagatingTransport{
		next:       rt,
		propagator: propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}),
	}
	c.http = &hc
	return c
}

// NormalizeBaseURL trims trailing slashes and appends /api when missing.
func NormalizeBaseURL(raw string) string {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	if u == "" {
		return ""
	}
	if strings.HasSuffix(u, "/api") {
		return u
	}
	return u + "/api"
}

func (c *Client) BaseURL() string  { return c.baseURL }
func (c *Client) AgentURL() string { return c.agentURL }

type authMode int

const (
	authNone authMode = iota
	authRequired
)

type call struct {
	op     string
	method string
	url    string
	path   string
	auth   authMode
	body   any
	// out receives the decoded JSON body. nil means the body is ignored.
	out any
}

func (c *Client) backend(path string) (string, string) { return c.baseURL + path, path }
func (c *Client) agent(path string) (string, string)   { return c.agentURL + path, path }

func (c *Client) do(ctx context.Context, cl call) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, cl.op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", cl.method),
			attribute.String("url.path", cl.path),
		),
	)
	defer span.End()

	start := time.Now()
	status, err := c.roundTrip(ctx, cl)
	fields := []zap.Field{
		zap.String("op", cl.op),
		zap.String("method", cl.method),
		zap.String("path", logging.SanitizePath(cl.path)),
		zap.Int("status", status),
		zap.Duration("duration", time.Since(start)),
	}
	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(KindOf(err)))
		c.log.Warn("api request failed", append(fields, zap.String("kind", string(KindOf(err))), zap.String("error", logging.SanitizeError(err)))...)
		return err
	}
	c.log.Debug("api request", fields...)
	return nil
}

func (c *Client) roundTrip(ctx context.Context, cl call) (int, error) {
	var body io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return 0, &Error{Kind: KindValidation, Detail: "could not encode request", Err: err}
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, cl.url, body)
	if err != nil {
		return 0, &Error{Kind: KindNetwork, Detail: "invalid request URL", Err: err}
	}
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if cl.auth == authRequired {
		tok, err := c.tokens.Token(ctx)
		if err != nil {
			return 0, &Error{Kind: KindAuthRequired, Detail: "could not read stored token", Err: err}
		}
		if strings.TrimSpace(tok) == "" {
			return 0, &Error{Kind: KindAuthRequired, Detail: "Please login first", Err: errNoToken}
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, statusError(resp.StatusCode, raw)
	}

	if cl.out == nil || resp.StatusCode == http.StatusNoContent || !isJSON(resp.Header.Get("Content-Type")) {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil {
		if ctx.Err() != nil {
			return resp.StatusCode, transportError(ctx, err)
		}
		return resp.StatusCode, &Error{Kind: KindDecode, Status: resp.StatusCode, Detail: "unexpected response from server", Err: err}
	}
	return resp.StatusCode, nil
}

func statusError(status int, body []byte) *Error {
	kind := KindHTTP
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		kind = KindUnauthorized
	}
	return &Error{Kind: kind, Status: status, Detail: extractDetail(body, status)}
}

// transportError maps a failure without a usable response. ctx is checked first because some
// libraries flatten the underlying error with %v.
func transportError(ctx context.Context, err error) *Error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Detail: "request timed out", Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &Error{Kind: KindTimeout, Detail: "request timed out", Err: err}
	}
	return &Error{Kind: KindNetwork, Detail: "could not reach server", Err: err}
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(contentType, "json")
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// propagatingTransport injects W3C trace context into every outgoing request, including the
// token request issued by the oauth2 package.
type propagatingTransport struct {
	next       http.RoundTripper
	propagator propagation.TextMapPropagator
}

func (t *propagatingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	t.propagator.Inject(req.Context(), propagation.HeaderCarrier(r.Header))
	return t.next.RoundTrip(r)
}
