package intake

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFilter(now time.Time) *Filter {
	f := NewFilter()
	f.now = func() time.Time { return now }
	return f
}

func validComment(now time.Time) CommentSubmission {
	return CommentSubmission{
		Slug:       "hello-world",
		Author:     "Ada",
		Email:      "ada@example.com",
		Body:       "A perfectly ordinary comment.",
		RenderedAt: now.Add(-10 * time.Second).UnixMilli(),
	}
}

func TestFilter_CheckComment_Accepts(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clean, err := testFilter(now).CheckComment(validComment(now))
	require.NoError(t, err)
	assert.Equal(t, "hello-world", clean.Slug)
	assert.Equal(t, "A perfectly ordinary comment.", clean.Body)
}

func TestFilter_CheckComment_ShapeErrors(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f := testFilter(now)

	tests := []struct {
		name   string
		mutate func(*CommentSubmission)
		reason string
	}{
		{"empty slug", func(s *CommentSubmission) { s.Slug = "" }, "bad_slug"},
		{"uppercase slug", func(s *CommentSubmission) { s.Slug = "Hello-World" }, "bad_slug"},
		{"slug with path chars", func(s *CommentSubmission) { s.Slug = "../etc/passwd" }, "bad_slug"},
		{"missing author", func(s *CommentSubmission) { s.Author = "" }, "missing_author"},
		{"author too long", func(s *CommentSubmission) { s.Author = strings.Repeat("a", MaxNameLength+1) }, "author_too_long"},
		{"missing email", func(s *CommentSubmission) { s.Email = "" }, "bad_email"},
		{"bad email syntax", func(s *CommentSubmission) { s.Email = "not-an-email" }, "bad_email"},
		{"missing body", func(s *CommentSubmission) { s.Body = "" }, "missing_body"},
		{"body too long", func(s *CommentSubmission) { s.Body = strings.Repeat("x", MaxBodyLength+1) }, "body_too_long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validComment(now)
			tt.mutate(&sub)
			_, err := f.CheckComment(sub)
			var rej *RejectionError
			require.ErrorAs(t, err, &rej)
			assert.Equal(t, tt.reason, rej.Reason)
			// Shape failures carry a specific, safe message.
			assert.NotEqual(t, genericRejection, rej.Message)
		})
	}
}

func TestFilter_HoneypotAndDwellShareGenericMessage(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f := testFilter(now)

	honeypot := validComment(now)
	honeypot.Honeypot = "http://spam.example"
	_, hpErr := f.CheckComment(honeypot)

	fast := validComment(now)
	fast.RenderedAt = now.UnixMilli() // dwell time of zero
	_, dwellErr := f.CheckComment(fast)

	var hpRej, dwellRej *RejectionError
	require.ErrorAs(t, hpErr, &hpRej)
	require.ErrorAs(t, dwellErr, &dwellRej)

	assert.Equal(t, "honeypot", hpRej.Reason)
	assert.Equal(t, "dwell_time", dwellRej.Reason)
	// The client-visible message must not reveal which heuristic fired.
	assert.Equal(t, hpRej.Message, dwellRej.Message)
	assert.Equal(t, genericRejection, hpRej.Message)
}

func TestFilter_DwellBoundary(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f := testFilter(now)

	atThreshold := validComment(now)
	atThreshold.RenderedAt = now.Add(-MinDwellTime).UnixMilli()
	_, err := f.CheckComment(atThreshold)
	assert.NoError(t, err, "dwell exactly at the threshold is acceptable")

	justUnder := validComment(now)
	justUnder.RenderedAt = now.Add(-MinDwellTime + time.Millisecond).UnixMilli()
	_, err = f.CheckComment(justUnder)
	assert.Error(t, err)
}

func TestFilter_MarkupOnlyBodyRejected(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	sub := validComment(now)
	sub.Body = `<script>alert("hi")</script><b></b>`
	_, err := testFilter(now).CheckComment(sub)
	var rej *RejectionError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "markup_only_body", rej.Reason)
}

func TestFilter_CheckContact(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f := testFilter(now)

	clean, err := f.CheckContact(ContactSubmission{
		Name:       "Ada",
		Email:      "ada@example.com",
		Subject:    "Hello",
		Message:    "Just <i>saying</i> hi.",
		RenderedAt: now.Add(-10 * time.Second).UnixMilli(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Just saying hi.", clean.Message)

	_, err = f.CheckContact(ContactSubmission{
		Name:       "Ada",
		Email:      "ada@example.com",
		Message:    "hi",
		Honeypot:   "bot",
		RenderedAt: now.Add(-10 * time.Second).UnixMilli(),
	})
	var rej *RejectionError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, genericRejection, rej.Message)
}

func TestSanitizeBody(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "hello world", "hello world"},
		{"strips tags", "<b>bold</b> and <a href=\"x\">link</a>", "bold and link"},
		{"drops script content", `<script>alert("x")</script>after`, "after"},
		{"collapses whitespace", "a\n\n  b\t c", "a b c"},
		{"trims", "  padded  ", "padded"},
		{"keeps bare comparisons", "1 < 2 & 3 > 2", "1 < 2 & 3 > 2"},
		{"markup only", "<div><br/></div>", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeBody(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, SanitizeBody(got), "sanitization must be idempotent")
		})
	}
}
