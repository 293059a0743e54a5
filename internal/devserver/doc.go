// Package devserver is an in-memory implementation of the memorial board API
// for local runs and integration tests.
//
// It serves the four endpoints the gateway calls under /api/v1 and wraps
// every answer in the {success, code, message, data} envelope. Leaf content
// is chosen here from Phrases; clients never pick it. Nothing is persisted.
//
// FailEvery and Latency in Options inject faults so the client's retry and
// highlight behaviour can be watched by hand:
//
//	wreath-devserver -addr :8081 -seed -fail-every 4 -latency 300ms
package devserver
