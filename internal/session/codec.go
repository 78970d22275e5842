package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/inkstone-site/inkstone/internal/domain"
)

// MaxAge is the fixed session lifetime. Tokens older than this verify as
// "no session" regardless of signature.
const MaxAge = 8 * time.Hour

// issuedAtSkew tolerates small clock drift between minting and verifying
// hosts.
const issuedAtSkew = time.Minute

var ErrNoSecret = errors.New("session: server secret is not configured")

// LookupFunc resolves an actor credential by ID during verification.
type LookupFunc func(actorID string) (*Credential, bool)

// Codec mints and verifies stateless session tokens of the form
// actorID.issuedAtMillis.signature. The signature is an HMAC keyed by the
// server secret combined with the actor's own secret, so rotating one
// actor's secret invalidates only that actor's tokens.
type Codec struct {
	serverSecret []byte
	now          func() time.Time
}

// NewCodec creates a codec bound to the server-wide signing secret.
func NewCodec(serverSecret string) (*Codec, error) {
	if strings.TrimSpace(serverSecret) == "" {
		return nil, ErrNoSecret
	}
	return &Codec{
		serverSecret: []byte(serverSecret),
		now:          time.Now,
	}, nil
}

// Mint produces a session token for a verified credential.
func (c *Codec) Mint(cred *Credential) (string, error) {
	if cred == nil || cred.ID == "" {
		return "", errors.New("session: credential is required")
	}
	payload := cred.ID + "." + strconv.FormatInt(c.now().UnixMilli(), 10)
	return payload + "." + c.sign(payload, cred.Secret), nil
}

// Verify checks a token and reconstructs the actor it names. Malformed,
// expired, and tampered tokens are all indistinguishable from "no
// session": the return is nil and nothing else. No error is surfaced so
// callers cannot build an oracle out of the failure mode.
func (c *Codec) Verify(token string, lookup LookupFunc) *domain.Actor {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return nil
	}
	actorID, issuedRaw, signature := parts[0], parts[1], parts[2]

	issuedMillis, err := strconv.ParseInt(issuedRaw, 10, 64)
	if err != nil {
		return nil
	}
	issuedAt := time.UnixMilli(issuedMillis)
	now := c.now()
	if now.Sub(issuedAt) > MaxAge {
		return nil
	}
	if issuedAt.After(now.Add(issuedAtSkew)) {
		return nil
	}

	cred, ok := lookup(actorID)
	if !ok || cred == nil {
		return nil
	}
	expected := c.sign(actorID+"."+issuedRaw, cred.Secret)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil
	}

	roles := make([]domain.Role, 0, len(cred.Roles))
	for _, raw := range cred.Roles {
		role, err := domain.ParseRole(raw)
		if err != nil {
			return nil
		}
		roles = append(roles, role)
	}
	return &domain.Actor{
		ID:          cred.ID,
		DisplayName: cred.Name,
		Roles:       roles,
	}
}

func (c *Codec) sign(payload, actorSecret string) string {
	key := make([]byte, 0, len(c.serverSecret)+len(actorSecret))
	key = append(key, c.serverSecret...)
	key = append(key, actorSecret...)
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
