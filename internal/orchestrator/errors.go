package orchestrator

import "fmt"

// Code is one of the taxonomy entries from spec.md §7.
type Code string

const (
	CodeNoProvidersAvailable Code = "no_providers_available"
	CodeNoCapableModel       Code = "no_capable_model"
	CodeBreakerOpen          Code = "breaker_open"
	CodeProviderAuth         Code = "provider_auth"
	CodeProviderRateLimited  Code = "provider_rate_limited"
	CodeProviderTransport    Code = "provider_transport"
	CodeProviderServer       Code = "provider_server"
	CodeTimeout              Code = "timeout"
	CodeCancelled            Code = "cancelled"
	CodeAnalysisFailed       Code = "analysis_failed"
	CodeSynthesisFailed      Code = "synthesis_failed"
	CodeInternal             Code = "internal"
)

// Error is the typed error carried through the pipeline, modeled on the
// teacher's llm.RetryableError: a category plus an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError constructs an Error, optionally wrapping a cause.
func NewError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// InvokeErrorCategory is the category a ProviderInvoker reports for a
// failed call (spec.md §6).
type InvokeErrorCategory string

const (
	InvokeAuth        InvokeErrorCategory = "auth"
	InvokeRateLimited InvokeErrorCategory = "rate_limited"
	InvokeTransport   InvokeErrorCategory = "transport"
	InvokeServer      InvokeErrorCategory = "server"
	InvokeTimeout     InvokeErrorCategory = "timeout"
	InvokeBadRequest  InvokeErrorCategory = "bad_request"
	InvokeUnknown     InvokeErrorCategory = "unknown"
)

// InvokeError is the error type ProviderInvoker.Invoke returns on
// failure.
type InvokeError struct {
	Category InvokeErrorCategory
	Message  string
}

func (e *InvokeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// CountsAsBreakerFailure reports whether this category should be
// recorded against the provider's circuit breaker per spec.md §6:
// only rate_limited/transport/server/timeout count; auth/bad_request
// are fatal for the attempt but do not trip the breaker.
func (c InvokeErrorCategory) CountsAsBreakerFailure() bool {
	switch c {
	case InvokeRateLimited, InvokeTransport, InvokeServer, InvokeTimeout:
		return true
	default:
		return false
	}
}

// DegradesProvider reports whether this category should mark the
// provider Degraded in the health view (auth and bad_request, per
// spec.md §6).
func (c InvokeErrorCategory) DegradesProvider() bool {
	return c == InvokeAuth || c == InvokeBadRequest
}
