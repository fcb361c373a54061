// Package types holds the wire envelopes shared by every HTTP response.
package types

// SuccessEnvelope wraps successful payloads under a single data key.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error body. Details stay empty unless the error
// code allows exposing them.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError under the error key.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// Success builds the standard success envelope.
func Success(data any) SuccessEnvelope {
	return SuccessEnvelope{Data: data}
}

// Failure builds the standard error envelope.
func Failure(code, message string, details any) ErrorEnvelope {
	return ErrorEnvelope{Error: APIError{Code: code, Message: message, Details: details}}
}
