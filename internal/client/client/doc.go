// Package client talks to the Aln feeder backend.
//
// The Client interface has one method per remote capability. HTTPClient is
// the JSON-over-HTTP implementation: it attaches the anti-forgery token to
// every non-GET request, keeps the backend session cookie in a cookie jar
// that remembers cookie attributes, throttles outbound requests, and reports
// per-operation metrics.
//
// # Error Handling
//
// Transport failures and 5xx answers surface as ErrUnavailable, undecodable
// bodies as ErrDecode. An application-level refusal is not an error: it is a
// decoded response whose Success (or LoggedIn) flag is false. The client never
// retries.
package client
