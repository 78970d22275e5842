package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrBadCursor marks a structurally invalid cursor token. It is a
// distinct error: a malformed cursor is never treated as "no cursor" or
// "end of results".
var ErrBadCursor = errors.New("bad cursor")

// Cursor is an opaque keyset position: a timestamp plus the tie-break key
// of the row it points at. It carries no meaning beyond "strictly
// before/after this row in the canonical order", and the encoding is
// backend-agnostic.
type Cursor struct {
	TS  time.Time
	Key string
}

// Encode renders the cursor as an opaque URL-safe token. The timestamp
// is carried at nanosecond precision: the backends store finer-grained
// times than a millisecond, and a token pointing even slightly before
// its row would make the strict keyset comparison skip rows that share
// the truncated timestamp.
func (c Cursor) Encode() string {
	raw := strconv.FormatInt(c.TS.UnixNano(), 10) + ":" + c.Key
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a token produced by Encode. Every malformed input
// maps to ErrBadCursor.
func DecodeCursor(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: not base64url", ErrBadCursor)
	}
	nanosPart, key, found := strings.Cut(string(raw), ":")
	if !found || key == "" {
		return Cursor{}, fmt.Errorf("%w: missing key", ErrBadCursor)
	}
	nanos, err := strconv.ParseInt(nanosPart, 10, 64)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: bad timestamp", ErrBadCursor)
	}
	return Cursor{TS: time.Unix(0, nanos).UTC(), Key: key}, nil
}

// CompareDesc orders two keyset positions in the canonical descending
// (timestamp, key) order. It returns -1 when a sorts first, 1 when b
// sorts first, and 0 when they are the same position. Both backends use
// this single comparator so their page boundaries agree.
func CompareDesc(aTS time.Time, aKey string, bTS time.Time, bKey string) int {
	if aTS.After(bTS) {
		return -1
	}
	if aTS.Before(bTS) {
		return 1
	}
	return strings.Compare(bKey, aKey)
}
