package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContactMessage is an inbound contact-form submission. Like comments,
// the email and IP are stored only as one-way hashes.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	EmailHash string    `json:"-"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	IPHash    string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// NewContactMessage creates a contact message record
func NewContactMessage(name, emailHash, subject, message, ipHash string) *ContactMessage {
	return &ContactMessage{
		ID:        uuid.NewString(),
		Name:      name,
		EmailHash: emailHash,
		Subject:   subject,
		Message:   message,
		IPHash:    ipHash,
		CreatedAt: time.Now().UTC(),
	}
}
