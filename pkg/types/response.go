// Package types holds the JSON envelopes shared by every API response, so
// the storefront and admin clients parse one shape.
package types

// SuccessEnvelope wraps any 2xx payload under a "data" key.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the wire form of a coded error. Details is present only when
// the code's metadata allows it, typically to name an offending field.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps non-2xx payloads under an "error" key.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
