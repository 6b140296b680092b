// Package resterr maps REST catalog HTTP failures onto a closed set of error
// kinds.
package resterr

import (
	"errors"
	"fmt"
	"net/http"

	icecat "github.com/apache/iceberg-go/catalog"
)

// Error kinds. Every *Error returned by this package unwraps to exactly one
// of these.
var (
	ErrBadRequest             = errors.New("bad request")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
	ErrNoSuchTable            = errors.New("no such table")
	ErrNoSuchNamespace        = errors.New("no such namespace")
	ErrTableAlreadyExists     = errors.New("table already exists")
	ErrNamespaceAlreadyExists = errors.New("namespace already exists")
	ErrNamespaceNotEmpty      = errors.New("namespace not empty")
	ErrCommitFailed           = errors.New("commit failed")
	ErrCommitStateUnknown     = errors.New("commit state unknown")
	ErrAuthorizationExpired   = errors.New("authorization expired")
	ErrNotImplemented         = errors.New("not implemented")
	ErrServiceUnavailable     = errors.New("service unavailable")
	ErrServerError            = errors.New("server error")
	ErrRESTProtocol           = errors.New("rest error")
	ErrOAuth                  = errors.New("oauth error")
)

// iceberg-go callers test against the catalog package sentinels.
var icebergAliases = map[error]error{
	ErrNoSuchTable:            icecat.ErrNoSuchTable,
	ErrNoSuchNamespace:        icecat.ErrNoSuchNamespace,
	ErrTableAlreadyExists:     icecat.ErrTableAlreadyExists,
	ErrNamespaceAlreadyExists: icecat.ErrNamespaceAlreadyExists,
	ErrNamespaceNotEmpty:      icecat.ErrNamespaceNotEmpty,
}

// Error is a failed catalog call.
type Error struct {
	Kind    error
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func (e *Error) Is(target error) bool {
	alias, ok := icebergAliases[e.Kind]
	return ok && alias == target
}

// New builds an Error of the given kind without an HTTP response.
func New(kind error, code int, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Overrides maps status codes to error kinds for a single operation. They
// take precedence over the default table.
type Overrides map[int]error

// Common override tables.
var (
	TokenOverrides  = Overrides{http.StatusBadRequest: ErrOAuth, http.StatusUnauthorized: ErrOAuth}
	CommitOverrides = Overrides{
		http.StatusConflict:            ErrCommitFailed,
		http.StatusInternalServerError: ErrCommitStateUnknown,
		http.StatusBadGateway:          ErrCommitStateUnknown,
		http.StatusGatewayTimeout:      ErrCommitStateUnknown,
	}
)

// StatusAuthorizationExpired is the non-standard status a catalog returns
// once a bearer token has expired.
const StatusAuthorizationExpired = 419

// KindFor resolves the error kind for a status code.
func KindFor(code int, overrides Overrides) error {
	if kind, ok := overrides[code]; ok {
		return kind
	}
	switch {
	case code == http.StatusBadRequest:
		return ErrBadRequest
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code == http.StatusForbidden:
		return ErrForbidden
	case code == http.StatusUnprocessableEntity:
		return ErrRESTProtocol
	case code == StatusAuthorizationExpired:
		return ErrAuthorizationExpired
	case code == http.StatusNotImplemented:
		return ErrNotImplemented
	case code == http.StatusServiceUnavailable:
		return ErrServiceUnavailable
	case code >= 500 && code < 600:
		return ErrServerError
	default:
		return ErrRESTProtocol
	}
}

// FromResponse maps a non-2xx response onto an Error. The body only ever
// changes the message; the kind depends on the status code alone.
func FromResponse(code int, body []byte, overrides Overrides) *Error {
	kind := KindFor(code, overrides)

	var (
		msg string
		err error
	)
	if kind == ErrOAuth {
		var resp OAuthErrorResponse
		if resp, err = parseOAuthError(body); err == nil {
			msg = resp.message()
		}
	} else {
		var model ErrorModel
		if model, err = parseErrorModel(body); err == nil {
			msg = model.message()
		}
	}

	var shapeErr *shapeError
	switch {
	case err == nil:
	case errors.As(err, &shapeErr):
		msg = fmt.Sprintf("RESTError %d: Received unexpected JSON Payload: %s, errors: %s", code, body, shapeErr.detail)
	default:
		msg = fmt.Sprintf("RESTError %d: Could not decode json payload: %s", code, body)
	}

	return &Error{Kind: kind, Code: code, Message: msg}
}
