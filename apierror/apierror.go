// Package apierror implements the gateway's error taxonomy: a single
// table mapping internal error kinds to HTTP status and to the
// OpenAI-shaped error body every failure response carries, whether it
// is written as a plain JSON body or as a single SSE error chunk.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies a class of failure. Kind values are the single source
// of truth for status code and wire error.type/error.code — see table.
type Kind string

const (
	InvalidParameter     Kind = "invalid_parameter"
	MissingRequiredField Kind = "missing_required_field"
	BadRequest           Kind = "bad_request"
	Unauthorized         Kind = "unauthorized"
	Forbidden            Kind = "forbidden"
	NotFound             Kind = "not_found"
	RateLimited          Kind = "rate_limited"
	UpstreamError        Kind = "upstream_error"
	ServiceUnavailable   Kind = "service_unavailable"
	ServerConfiguration  Kind = "server_configuration"
	NetworkTimeout       Kind = "network_timeout"
	NetworkConnect       Kind = "network_connect"
	ResponseParse        Kind = "response_parse"
	Serde                Kind = "serde"
)

// Error is the gateway's internal error type. UpstreamStatus is only
// meaningful for Kind == UpstreamError, where the handler echoes the
// upstream's own status code instead of a fixed one.
type Error struct {
	Kind           Kind
	Message        string
	UpstreamStatus int
	RetryAfter     *int
	cause          error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an Error of the given kind around a lower-level cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// Upstream constructs an UpstreamError carrying the status the upstream
// itself returned, so the gateway can echo it back unchanged.
func Upstream(status int, message string) *Error {
	return &Error{Kind: UpstreamError, Message: message, UpstreamStatus: status}
}

// RateLimit constructs a RateLimited error, carrying the upstream's
// Retry-After value (in seconds) when it sent one.
func RateLimit(retryAfterSeconds *int, message string) *Error {
	return &Error{Kind: RateLimited, Message: message, RetryAfter: retryAfterSeconds}
}

type row struct {
	status    int
	errType   string
	errCode   string
}

var table = map[Kind]row{
	InvalidParameter:     {http.StatusBadRequest, "invalid_request_error", "invalid_parameter"},
	MissingRequiredField: {http.StatusBadRequest, "invalid_request_error", "missing_field"},
	BadRequest:           {http.StatusBadRequest, "invalid_request_error", "invalid_parameter"},
	Unauthorized:         {http.StatusUnauthorized, "authentication_error", "unauthorized"},
	Forbidden:            {http.StatusForbidden, "permission_error", "forbidden"},
	NotFound:             {http.StatusNotFound, "invalid_request_error", "not_found"},
	RateLimited:          {http.StatusTooManyRequests, "rate_limit_error", "rate_limit_exceeded"},
	UpstreamError:        {http.StatusBadGateway, "api_error", "upstream_error"},
	ServiceUnavailable:   {http.StatusServiceUnavailable, "api_error", "unavailable"},
	ServerConfiguration:  {http.StatusServiceUnavailable, "api_error", "unavailable"},
	NetworkTimeout:       {http.StatusGatewayTimeout, "api_error", "timeout"},
	NetworkConnect:       {http.StatusBadGateway, "api_error", "bad_gateway"},
	ResponseParse:        {http.StatusInternalServerError, "api_error", "internal"},
	Serde:                {http.StatusInternalServerError, "api_error", "internal"},
}

// Status returns the HTTP status this error should be served with.
func (e *Error) Status() int {
	if e.Kind == UpstreamError && e.UpstreamStatus != 0 {
		return e.UpstreamStatus
	}
	if r, ok := table[e.Kind]; ok {
		return r.status
	}
	return http.StatusInternalServerError
}

// Body is the `error` field of the OpenAI-shaped error response.
type Body struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

// Envelope is the full JSON body, or the payload of an SSE error chunk.
type Envelope struct {
	Error Body `json:"error"`
}

// ToEnvelope renders the error as the wire envelope spec.md §4.H
// requires.
func (e *Error) ToEnvelope() Envelope {
	r, ok := table[e.Kind]
	if !ok {
		r = row{status: http.StatusInternalServerError, errType: "api_error", errCode: "internal"}
	}
	message := e.Message
	if e.RetryAfter != nil {
		message = fmt.Sprintf("%s (retry after %ds)", message, *e.RetryAfter)
	}
	return Envelope{Error: Body{Message: message, Type: r.errType, Code: r.errCode}}
}

// As extracts an *Error from err if one is present anywhere in its
// chain, otherwise wraps err as an internal Serde error so callers never
// need a type switch at the call site.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var target *Error
	if errors.As(err, &target) {
		return target
	}
	return Wrap(Serde, "internal error", err)
}
