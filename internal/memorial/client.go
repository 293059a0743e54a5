package memorial

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// Gateway is the contract the synchronization store consumes. Every call
// returns an Envelope; failures never surface as Go errors or panics.
type Gateway interface {
	ListFlowers(ctx context.Context) Envelope[[]Flower]
	ListLeaves(ctx context.Context) Envelope[[]Leaf]
	CreateFlower(ctx context.Context, content string) Envelope[Flower]
	CreateLeaf(ctx context.Context) Envelope[Leaf]
}

// Ensure Client implements Gateway at compile time.
var _ Gateway = (*Client)(nil)

// Operation identifies a gateway call in hook payloads.
type Operation string

const (
	OpListFlowers  Operation = "list_flowers"
	OpListLeaves   Operation = "list_leaves"
	OpCreateFlower Operation = "create_flower"
	OpCreateLeaf   Operation = "create_leaf"
)

// RequestInfo is passed to OnRequest hooks before a request is sent.
type RequestInfo struct {
	ID        string
	Operation Operation
	Method    string
	URL       string
	Body      []byte
}

// ResponseInfo is passed to OnResponse hooks once the call has been
// normalized. Status is zero when no HTTP response arrived. Dropped counts
// list items discarded for a missing id or blank content.
type ResponseInfo struct {
	ID        string
	Operation Operation
	Method    string
	URL       string
	Status    int
	Success   bool
	Code      int
	Message   string
	Duration  time.Duration
	Dropped   int
	Err       error
}

// Client talks to the memorial REST API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string

	hookMu     sync.RWMutex
	onRequest  []func(RequestInfo)
	onResponse []func(ResponseInfo)
}

const (
	DefaultBaseURL   = "http://localhost:8081/api/v1"
	defaultUserAgent = "wreath/0.1"
	defaultTimeout   = 10 * time.Second
	maxBodyBytes     = 4 << 20
)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient builds a Client rooted at baseURL (e.g. http://host:8081/api/v1).
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// OnRequest registers fn to observe outgoing requests.
func (c *Client) OnRequest(fn func(RequestInfo)) {
	if fn == nil {
		return
	}
	c.hookMu.Lock()
	c.onRequest = append(c.onRequest, fn)
	c.hookMu.Unlock()
}

// OnResponse registers fn to observe normalized outcomes.
func (c *Client) OnResponse(fn func(ResponseInfo)) {
	if fn == nil {
		return
	}
	c.hookMu.Lock()
	c.onResponse = append(c.onResponse, fn)
	c.hookMu.Unlock()
}

// ListFlowers retrieves every flower.
func (c *Client) ListFlowers(ctx context.Context) Envelope[[]Flower] {
	if c == nil {
		return Failure[[]Flower](CodeUnreachable, "Could not load flowers: client is nil", nil)
	}
	return call(ctx, c, request[[]Flower]{
		op:      OpListFlowers,
		method:  http.MethodGet,
		path:    "flowers",
		failMsg: "Could not load flowers",
		prune:   pruneInvalid[Flower],
	})
}

// ListLeaves retrieves every leaf.
func (c *Client) ListLeaves(ctx context.Context) Envelope[[]Leaf] {
	if c == nil {
		return Failure[[]Leaf](CodeUnreachable, "Could not load leaves: client is nil", nil)
	}
	return call(ctx, c, request[[]Leaf]{
		op:      OpListLeaves,
		method:  http.MethodGet,
		path:    "leaves",
		failMsg: "Could not load leaves",
		prune:   pruneInvalid[Leaf],
	})
}

// CreateFlower submits a visitor message. Empty content is rejected without a
// network call.
func (c *Client) CreateFlower(ctx context.Context, content string) Envelope[Flower] {
	if c == nil {
		return Failure[Flower](CodeUnreachable, "Could not send your message: client is nil", nil)
	}
	normalized, ok := NormalizeContent(content)
	if !ok {
		return Failure[Flower](http.StatusBadRequest, "Message is empty", nil)
	}
	return call(ctx, c, request[Flower]{
		op:      OpCreateFlower,
		method:  http.MethodPost,
		path:    "flowers",
		body:    map[string]string{"content": normalized},
		failMsg: "Could not send your message",
		valid:   func(f Flower) bool { return f.valid() },
	})
}

// CreateLeaf asks the server to plant a leaf with a phrase of its choosing.
func (c *Client) CreateLeaf(ctx context.Context) Envelope[Leaf] {
	if c == nil {
		return Failure[Leaf](CodeUnreachable, "Could not send your leaf: client is nil", nil)
	}
	return call(ctx, c, request[Leaf]{
		op:      OpCreateLeaf,
		method:  http.MethodPost,
		path:    "leaves",
		failMsg: "Could not send your leaf",
		valid:   func(l Leaf) bool { return l.valid() },
	})
}

type request[T any] struct {
	op      Operation
	method  string
	path    string
	body    any
	failMsg string
	valid   func(T) bool
	prune   func(T) (T, int)
}

// exchange is what call reports to hooks besides the envelope.
type exchange struct {
	status  int
	dropped int
}

func call[T any](ctx context.Context, c *Client, r request[T]) Envelope[T] {
	id := uuid.NewString()
	target := c.baseURL.JoinPath(r.path).String()
	start := time.Now()

	env, ex := execute(ctx, c, id, target, r)

	info := ResponseInfo{
		ID:        id,
		Operation: r.op,
		Method:    r.method,
		URL:       target,
		Status:    ex.status,
		Success:   env.Success,
		Code:      env.Code,
		Message:   env.Message,
		Duration:  time.Since(start),
		Dropped:   ex.dropped,
		Err:       env.Err(),
	}
	c.hookMu.RLock()
	hooks := c.onResponse
	c.hookMu.RUnlock()
	for _, fn := range hooks {
		fn(info)
	}
	return env
}

func execute[T any](ctx context.Context, c *Client, id, target string, r request[T]) (Envelope[T], exchange) {
	var payload []byte
	var reader io.Reader
	if r.body != nil {
		encoded, err := json.Marshal(r.body)
		if err != nil {
			return Failure[T](CodeUnreachable, r.failMsg+": could not encode request", fmt.Errorf("encode request: %w", err)), exchange{}
		}
		payload = encoded
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, reader)
	if err != nil {
		return Failure[T](CodeUnreachable, r.failMsg+": invalid request", fmt.Errorf("create request: %w", err)), exchange{}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", id)

	c.hookMu.RLock()
	hooks := c.onRequest
	c.hookMu.RUnlock()
	for _, fn := range hooks {
		fn(RequestInfo{ID: id, Operation: r.op, Method: r.method, URL: target, Body: payload})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Failure[T](CodeUnreachable, r.failMsg+": "+classifyTransportError(err), fmt.Errorf("execute request: %w", err)), exchange{}
	}
	defer func() { _ = resp.Body.Close() }()

	ex := exchange{status: resp.StatusCode}
	status := ex.status
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Failure[T](status, r.failMsg+": "+classifyTransportError(err), fmt.Errorf("read response: %w", err)), ex
	}

	wire, decodeErr := decodeWire(body)
	if status < 200 || status > 299 {
		if decodeErr == nil && strings.TrimSpace(wire.Message) != "" {
			code := wire.Code
			if code == 0 {
				code = status
			}
			return Failure[T](code, wire.Message, fmt.Errorf("api %s returned status %d", r.path, status)), ex
		}
		return Failure[T](status, fmt.Sprintf("%s: server returned status %d", r.failMsg, status),
			fmt.Errorf("api %s returned status %d", r.path, status)), ex
	}
	if decodeErr != nil {
		return Failure[T](status, r.failMsg+": malformed response", fmt.Errorf("decode response: %w", decodeErr)), ex
	}
	code := wire.Code
	if code == 0 {
		code = status
	}
	if !*wire.Success {
		msg := strings.TrimSpace(wire.Message)
		if msg == "" {
			msg = r.failMsg
		}
		return Failure[T](code, msg, nil), ex
	}
	if !wire.hasData() {
		return Failure[T](code, r.failMsg+": response had no data", fmt.Errorf("%w: success without data", errMalformed)), ex
	}
	var data T
	if err := json.Unmarshal(wire.Data, &data); err != nil {
		return Failure[T](code, r.failMsg+": malformed response", fmt.Errorf("decode data: %w", err)), ex
	}
	if r.prune != nil {
		data, ex.dropped = r.prune(data)
	}
	if r.valid != nil && !r.valid(data) {
		return Failure[T](code, r.failMsg+": response data was invalid", fmt.Errorf("%w: invalid data", errMalformed)), ex
	}
	return Success(code, wire.Message, data), ex
}

// pruneInvalid drops items without a positive id or with blank content.
func pruneInvalid[E interface{ valid() bool }](items []E) ([]E, int) {
	kept := make([]E, 0, len(items))
	for _, item := range items {
		if item.valid() {
			kept = append(kept, item)
		}
	}
	return kept, len(items) - len(kept)
}

// classifyTransportError turns low-level failures into short, human-readable
// reasons.
func classifyTransportError(err error) string {
	var dnsErr *net.DNSError
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, syscall.ECONNREFUSED):
		return "server unreachable"
	case errors.As(err, &dnsErr):
		return "host not found"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "request timed out"
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "server unreachable"
	case strings.Contains(msg, "timeout"):
		return "request timed out"
	case strings.Contains(msg, "no such host"):
		return "host not found"
	case strings.Contains(msg, "EOF"), strings.Contains(msg, "connection reset"):
		return "connection lost"
	default:
		return "network error"
	}
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api base %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api base %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
