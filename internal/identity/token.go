package identity

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/brewhouse/ordering/internal/kvstore"
)

// SessionSlotKey is the persisted session slot name, carried over from the
// original product.
const SessionSlotKey = "bh_user"

var _ Provider = (*TokenProvider)(nil)

// TokenProvider reads a stored session token from the key-value slot and
// extracts the subject claim. The token is parsed without signature
// verification: the identifier is attached to outgoing orders for attribution
// only, the backend owns verification. An absent or unparseable token means
// anonymous, never an error.
type TokenProvider struct {
	kv kvstore.Store
	lg *zap.Logger
}

// NewTokenProvider creates a TokenProvider over the given slot store.
func NewTokenProvider(kv kvstore.Store, lg *zap.Logger) *TokenProvider {
	return &TokenProvider{kv: kv, lg: lg}
}

// CurrentIdentifier implements Provider.
func (p *TokenProvider) CurrentIdentifier() (string, bool) {
	data, err := p.kv.Get(SessionSlotKey)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			p.lg.Debug("session slot unreadable", zap.Error(err))
		}
		return "", false
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", false
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		p.lg.Debug("session token unparseable", zap.Error(err))
		return "", false
	}
	if claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}
