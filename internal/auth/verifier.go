package auth

import (
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/noah-isme/backend-konveksi/internal/common"
)

// Claims is the identity extracted from a verified access token.
type Claims struct {
	UserID string
	Role   string
}

// Verifier checks HS256 access tokens issued by the backend. This service
// never issues tokens; it only extracts identity for the cart and order
// surfaces.
type Verifier struct {
	Secret    []byte
	Issuer    string
	ClockSkew time.Duration

	// now is overridable in tests.
	now func() time.Time
}

// NewVerifier constructs a token verifier for a shared HS256 secret.
func NewVerifier(secret string, issuer string) *Verifier {
	return &Verifier{Secret: []byte(secret), Issuer: issuer, ClockSkew: 30 * time.Second, now: time.Now}
}

// Parse validates a bearer token and returns the embedded identity.
func (v *Verifier) Parse(token string) (Claims, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return Claims{}, common.NewAppError("UNAUTHORIZED", "missing token", 401, nil)
	}
	options := []jwt.ParseOption{
		jwt.WithKey(jwa.HS256, v.Secret),
		jwt.WithValidate(true),
	}
	if v.now != nil {
		now := v.now()
		options = append(options, jwt.WithClock(jwt.ClockFunc(func() time.Time { return now })))
	}
	if v.ClockSkew > 0 {
		options = append(options, jwt.WithAcceptableSkew(v.ClockSkew))
	}
	if v.Issuer != "" {
		options = append(options, jwt.WithIssuer(v.Issuer))
	}
	parsed, err := jwt.ParseString(trimmed, options...)
	if err != nil {
		return Claims{}, common.NewAppError("UNAUTHORIZED", "invalid token", 401, err)
	}
	claims := Claims{UserID: parsed.Subject()}
	if raw, ok := parsed.Get("role"); ok {
		if role, ok := raw.(string); ok {
			claims.Role = role
		}
	}
	if claims.UserID == "" {
		return Claims{}, common.NewAppError("UNAUTHORIZED", "token missing subject", 401, nil)
	}
	return claims, nil
}
