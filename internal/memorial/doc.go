// Package memorial provides the HTTP gateway to the memorial board API.
//
// # Overview
//
// The remote service stores two kinds of tributes: flowers, written by
// visitors, and leaves, whose short phrase is picked by the server. This
// package wraps the four REST calls that read and create them and turns every
// outcome into a single Envelope shape:
//
//   - GET  /flowers → Envelope[[]Flower]
//   - GET  /leaves  → Envelope[[]Leaf]
//   - POST /flowers → Envelope[Flower]   body: {"content": "..."}
//   - POST /leaves  → Envelope[Leaf]     no body
//
// # Envelope Normalization
//
// Callers never see a Go error from the gateway. Three failure classes
// collapse into an Envelope with Success=false:
//
//   - Transport: connection refused, DNS failure, timeout, cancellation.
//     Code is CodeUnreachable (0).
//   - HTTP: a non-2xx status without a well-formed envelope. Code is the
//     HTTP status.
//   - Application: the server answered {"success": false, ...}. Code and
//     Message are passed through unchanged.
//
// A response that claims success but carries no data, or data that does not
// decode into the expected type, is also a failure. Envelope.Value returns
// the payload only when Success is true, so a failure can never leak a
// half-decoded value.
//
// Messages are short and meant for people, e.g.
//
//	Could not load flowers: server unreachable
//	Could not send your message: server returned status 502
//
// The original cause stays available through Envelope.Err for logging.
//
// # Observability Hooks
//
// The client does not log. OnRequest and OnResponse register callbacks that
// receive a RequestInfo before the request is sent and a ResponseInfo after
// the outcome has been normalized. Every request carries an X-Request-ID that
// appears in both payloads.
//
//	client.OnResponse(func(info memorial.ResponseInfo) {
//		log.Info(ctx, "gateway call", "op", info.Operation, "ok", info.Success)
//	})
//
// # URL Construction
//
// NewClient accepts a base URL that includes the API prefix:
//
//   - "" → http://localhost:8081/api/v1
//   - "localhost:9000/api/v1" → http://localhost:9000/api/v1
//   - "https://board.example.org/api/v1/" → trailing slash removed
//
// # Content Rules
//
// NormalizeContent trims a flower message and limits it to MaxContentLength
// characters. CreateFlower applies the same rule and refuses empty content
// without touching the network; the store validates first, so this is only
// a guard.
package memorial
