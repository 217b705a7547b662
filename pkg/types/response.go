// Package types holds the JSON envelopes shared by every HTTP response.
package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// Notice tells the client a read came back empty because a backend failed,
// not because there was nothing to show.
type Notice struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// DegradedEnvelope is a successful read that carries a Notice.
type DegradedEnvelope struct {
	Data   any    `json:"data"`
	Notice Notice `json:"notice"`
}
