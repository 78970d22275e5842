package intake

import (
	"regexp"
	"time"
)

// Bounds for inbound submissions.
const (
	MaxBodyLength    = 2000
	MaxNameLength    = 120
	MaxEmailLength   = 320
	MaxSubjectLength = 200
	MaxMessageLength = 5000
	MinDwellTime     = 3 * time.Second
)

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// genericRejection is the shared message for abuse-heuristic failures.
// Honeypot and dwell-time rejections must be indistinguishable to the
// client; the real reason only goes to the server log.
const genericRejection = "submission could not be accepted"

// RejectionError reports why a submission was refused. Message is safe to
// show the submitter; Reason is the internal heuristic name for logging.
type RejectionError struct {
	Reason  string
	Message string
}

func (e *RejectionError) Error() string {
	return e.Message
}

func reject(reason, message string) *RejectionError {
	return &RejectionError{Reason: reason, Message: message}
}

func rejectGeneric(reason string) *RejectionError {
	return &RejectionError{Reason: reason, Message: genericRejection}
}

// CommentSubmission is the raw comment form payload. RenderedAt is the
// client-reported form render time in unix milliseconds, used for the
// dwell-time heuristic.
type CommentSubmission struct {
	Slug       string
	Author     string
	Email      string
	Body       string
	Honeypot   string
	RenderedAt int64
}

// CleanComment is a submission that passed every intake check, with the
// body sanitized.
type CleanComment struct {
	Slug   string
	Author string
	Email  string
	Body   string
}

// ContactSubmission is the raw contact form payload.
type ContactSubmission struct {
	Name       string
	Email      string
	Subject    string
	Message    string
	Honeypot   string
	RenderedAt int64
}

// CleanContact is a contact submission that passed intake.
type CleanContact struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Filter runs the intake pipeline: shape validation, honeypot, dwell
// time, sanitization. Checks short-circuit on the first failure.
type Filter struct {
	minDwell time.Duration
	now      func() time.Time
}

// NewFilter creates a filter with the default dwell threshold.
func NewFilter() *Filter {
	return &Filter{
		minDwell: MinDwellTime,
		now:      time.Now,
	}
}

// CheckComment validates and sanitizes a comment submission.
func (f *Filter) CheckComment(sub CommentSubmission) (*CleanComment, error) {
	switch {
	case sub.Slug == "" || !slugPattern.MatchString(sub.Slug):
		return nil, reject("bad_slug", "a valid content slug is required")
	case sub.Author == "":
		return nil, reject("missing_author", "a name is required")
	case len(sub.Author) > MaxNameLength:
		return nil, reject("author_too_long", "name is too long")
	case sub.Email == "" || !emailPattern.MatchString(sub.Email):
		return nil, reject("bad_email", "a valid email address is required")
	case len(sub.Email) > MaxEmailLength:
		return nil, reject("email_too_long", "email address is too long")
	case sub.Body == "":
		return nil, reject("missing_body", "a comment body is required")
	case len(sub.Body) > MaxBodyLength:
		return nil, reject("body_too_long", "comment body is too long")
	}

	if err := f.checkHeuristics(sub.Honeypot, sub.RenderedAt); err != nil {
		return nil, err
	}

	body := SanitizeBody(sub.Body)
	if body == "" {
		return nil, reject("markup_only_body", "a comment body is required")
	}

	return &CleanComment{
		Slug:   sub.Slug,
		Author: SanitizeBody(sub.Author),
		Email:  sub.Email,
		Body:   body,
	}, nil
}

// CheckContact validates and sanitizes a contact submission.
func (f *Filter) CheckContact(sub ContactSubmission) (*CleanContact, error) {
	switch {
	case sub.Name == "":
		return nil, reject("missing_name", "a name is required")
	case len(sub.Name) > MaxNameLength:
		return nil, reject("name_too_long", "name is too long")
	case sub.Email == "" || !emailPattern.MatchString(sub.Email):
		return nil, reject("bad_email", "a valid email address is required")
	case len(sub.Email) > MaxEmailLength:
		return nil, reject("email_too_long", "email address is too long")
	case len(sub.Subject) > MaxSubjectLength:
		return nil, reject("subject_too_long", "subject is too long")
	case sub.Message == "":
		return nil, reject("missing_message", "a message is required")
	case len(sub.Message) > MaxMessageLength:
		return nil, reject("message_too_long", "message is too long")
	}

	if err := f.checkHeuristics(sub.Honeypot, sub.RenderedAt); err != nil {
		return nil, err
	}

	message := SanitizeBody(sub.Message)
	if message == "" {
		return nil, reject("markup_only_message", "a message is required")
	}

	return &CleanContact{
		Name:    SanitizeBody(sub.Name),
		Email:   sub.Email,
		Subject: SanitizeBody(sub.Subject),
		Message: message,
	}, nil
}

// checkHeuristics runs the bot checks. Both failure modes map to the same
// client-visible message.
func (f *Filter) checkHeuristics(honeypot string, renderedAt int64) error {
	if honeypot != "" {
		return rejectGeneric("honeypot")
	}
	if renderedAt <= 0 {
		return rejectGeneric("missing_render_time")
	}
	dwell := f.now().Sub(time.UnixMilli(renderedAt))
	if dwell < f.minDwell {
		return rejectGeneric("dwell_time")
	}
	return nil
}
