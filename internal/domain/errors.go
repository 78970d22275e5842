package domain

// DomainError represents a violation of a domain rule. Handlers map these
// to user-facing responses; everything else is treated as internal.
type DomainError struct {
	message string
}

func (e *DomainError) Error() string {
	return e.message
}

// NewDomainError creates a new domain error
func NewDomainError(message string) *DomainError {
	return &DomainError{message: message}
}

// Shared error catalogue. Not-found is distinct from forbidden so callers
// can tell "no such comment" apart from "you may not touch it".
var (
	ErrCommentNotFound    = NewDomainError("comment not found")
	ErrForbidden          = NewDomainError("forbidden")
	ErrUnauthenticated    = NewDomainError("unauthenticated")
	ErrBackendUnavailable = NewDomainError("backing store unavailable")
	ErrInvalidAction      = NewDomainError("invalid moderation action")
)
