package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MetadataKind tags the resolved type of a metadata value.
type MetadataKind string

const (
	MetadataString MetadataKind = "string"
	MetadataBool   MetadataKind = "bool"
	MetadataList   MetadataKind = "list"
)

// MetadataValue is a tagged union of the scalar kinds allowed in audit
// metadata. Loosely-typed input is resolved to one of these kinds at the
// boundary; untyped maps never travel through the moderation engine.
type MetadataValue struct {
	Kind MetadataKind
	Str  string
	Bool bool
	List []string
}

// StringValue wraps a string metadata value
func StringValue(s string) MetadataValue {
	return MetadataValue{Kind: MetadataString, Str: s}
}

// BoolValue wraps a bool metadata value
func BoolValue(b bool) MetadataValue {
	return MetadataValue{Kind: MetadataBool, Bool: b}
}

// ListValue wraps a string-list metadata value
func ListValue(items []string) MetadataValue {
	return MetadataValue{Kind: MetadataList, List: items}
}

// MarshalJSON encodes the value as its underlying scalar.
func (v MetadataValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case MetadataString:
		return json.Marshal(v.Str)
	case MetadataBool:
		return json.Marshal(v.Bool)
	case MetadataList:
		if v.List == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(v.List)
	}
	return nil, fmt.Errorf("unknown metadata kind %q", v.Kind)
}

// UnmarshalJSON resolves a raw JSON scalar into a tagged value. Anything
// outside the known kinds is rejected rather than carried along untyped.
func (v *MetadataValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = StringValue(s)
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = BoolValue(b)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*v = ListValue(list)
		return nil
	}
	return fmt.Errorf("unsupported metadata value: %s", string(data))
}

// Metadata is the resolved metadata attached to an audit entry.
type Metadata map[string]MetadataValue

// AuditEntry is an immutable record of one moderation transition.
// Append-only: entries are written once and never updated. The audit log,
// not the current comment status, is the authoritative history.
type AuditEntry struct {
	ID         string    `json:"id"`
	CommentID  string    `json:"comment_id"`
	Action     string    `json:"action"`
	ActorID    string    `json:"actor_id"`
	ActorName  string    `json:"actor_name"`
	ActorRoles []Role    `json:"actor_roles"`
	Metadata   Metadata  `json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewAuditEntry captures who did what to a comment.
func NewAuditEntry(commentID string, action ModerationAction, actor *Actor, metadata Metadata) *AuditEntry {
	roles := make([]Role, len(actor.Roles))
	copy(roles, actor.Roles)
	return &AuditEntry{
		ID:         uuid.NewString(),
		CommentID:  commentID,
		Action:     string(action),
		ActorID:    actor.ID,
		ActorName:  actor.DisplayName,
		ActorRoles: roles,
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
	}
}
