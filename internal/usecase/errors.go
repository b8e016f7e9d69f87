package usecase

import (
	"errors"
	"fmt"
)

const (
	CodeCredentialsInvalid = "CREDENTIALS_INVALID"
	CodeProviderRejected   = "PROVIDER_REJECTED"
	CodeNetworkError       = "NETWORK_ERROR"
	CodeFetchFailed        = "FETCH_FAILED"
	CodeActionFailed       = "ACTION_FAILED"
	CodeNotConnected       = "NOT_CONNECTED"
)

var (
	ErrBusy            = errors.New("another request of the same kind is in flight")
	ErrSessionClosed   = errors.New("session closed before the response arrived")
	ErrActionPending   = errors.New("a bulk action is awaiting confirmation")
	ErrNoPendingAction = errors.New("no bulk action to confirm")
	ErrWrongAuthKind   = errors.New("operation not supported by this provider's auth flow")
	ErrIndexOutOfView  = errors.New("index outside the current view")
	ErrStaleView       = errors.New("the collection changed since the selection was made")
)

// DomainError is a failure the user can fix: bad input, a refusal from the
// provider.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError is a failure of the round-trip itself.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

// ErrorCode returns the code carried by err, or "" when it has none.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	var te *TechnicalError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

func credentialsInvalid(verrs []ValidationError) error {
	return &DomainError{
		Code:    CodeCredentialsInvalid,
		Message: fmt.Sprintf("invalid credentials: %s", joinValidation(verrs)),
		Err:     ValidationErrors(verrs),
	}
}
