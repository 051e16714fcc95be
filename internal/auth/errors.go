package auth

import "errors"

// Storage-layer sentinels. The service translates these into kinded errors
// with user-facing messages.
var (
	ErrNotFound   = errors.New("auth: not found")
	ErrEmailTaken = errors.New("auth: email already registered")
)

// Token sentinels.
var (
	ErrInvalidToken = errors.New("auth: invalid token")
	ErrTokenExpired = errors.New("auth: token expired")
)

// Kind classifies an operation failure for the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindConflict
	KindNotFound
)

// Error carries a failure kind together with the message shown to the
// client. Validation and authorization failures are raised as *Error;
// anything else surfaces as KindInternal at the boundary.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func badRequest(msg string) error   { return &Error{Kind: KindBadRequest, Message: msg} }
func unauthorized(msg string) error { return &Error{Kind: KindUnauthorized, Message: msg} }
func forbidden(msg string) error    { return &Error{Kind: KindForbidden, Message: msg} }
func conflict(msg string) error     { return &Error{Kind: KindConflict, Message: msg} }
func notFound(msg string) error     { return &Error{Kind: KindNotFound, Message: msg} }

// KindOf extracts the failure kind; uncategorized errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
