package model

import (
	"fmt"
	"net/http"
)

// FailureKind classifies why a relay call produced no usable exchange.
type FailureKind string

const (
	// LocalValidationError means the request was rejected before any network attempt.
	LocalValidationError FailureKind = "local_validation_error"
	// TransportFailure means no HTTP exchange completed.
	TransportFailure FailureKind = "transport_failure"
	// TargetError means the target answered with a non-2xx status.
	TargetError FailureKind = "target_error"
)

// Failure messages.
const (
	MsgUnsupportedMethod = "unsupported method"
	MsgInvalidURL        = "invalid URL"
	MsgInvalidJSONBody   = "invalid JSON in request body"
	MsgNoResponse        = "no response received from server"
	MsgSetup             = "error setting up the request"
)

// Result is exactly one of *Success or *Failure.
type Result interface {
	isResult()
}

// Success is a completed exchange with a 2xx status.
type Success struct {
	Status  int
	Headers http.Header
	Data    Data
}

// Failure is a classified relay failure. Status, Headers and Data are only
// set for TargetError.
type Failure struct {
	Kind    FailureKind
	Message string
	Status  int
	Headers http.Header
	Data    *Data
	Details string
}

func (*Success) isResult() {}
func (*Failure) isResult() {}

// Error implements error so a Failure can travel as one.
func (f *Failure) Error() string {
	if f.Details != "" {
		return fmt.Sprintf("%s: %s: %s", f.Kind, f.Message, f.Details)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// ValidationFailure builds a LocalValidationError.
func ValidationFailure(message, details string) *Failure {
	return &Failure{Kind: LocalValidationError, Message: message, Details: details}
}

// TransportFailed builds a TransportFailure with the low-level cause as details.
func TransportFailed(details string) *Failure {
	return &Failure{Kind: TransportFailure, Message: MsgNoResponse, Details: details}
}

// TargetFailed builds a TargetError carrying what the target returned.
func TargetFailed(status int, header http.Header, data Data) *Failure {
	return &Failure{
		Kind:    TargetError,
		Message: fmt.Sprintf("request failed with status code %d", status),
		Status:  status,
		Headers: header,
		Data:    &data,
	}
}
