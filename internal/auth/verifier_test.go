package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-konveksi/internal/common"
)

const testSecret = "konveksi-test-secret"

func signToken(t *testing.T, subject, role string, now time.Time, ttl time.Duration) string {
	t.Helper()
	builder := jwt.NewBuilder().
		Issuer("backend-konveksi").
		Subject(subject).
		IssuedAt(now).
		Expiration(now.Add(ttl))
	if role != "" {
		builder = builder.Claim("role", role)
	}
	token, err := builder.Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, []byte(testSecret)))
	require.NoError(t, err)
	return string(signed)
}

func newVerifier(now time.Time) *Verifier {
	v := NewVerifier(testSecret, "backend-konveksi")
	v.now = func() time.Time { return now }
	return v
}

func TestParseValidToken(t *testing.T) {
	now := time.Now()
	claims, err := newVerifier(now).Parse(signToken(t, "user-1", "staff", now, time.Minute))
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "staff", claims.Role)
}

func TestParseExpiredToken(t *testing.T) {
	now := time.Now()
	_, err := newVerifier(now).Parse(signToken(t, "user-1", "", now.Add(-time.Hour), time.Minute))
	require.Error(t, err)
	require.True(t, common.IsAppError(err))
}

func TestParseWrongSecret(t *testing.T) {
	now := time.Now()
	v := NewVerifier("another-secret", "backend-konveksi")
	v.now = func() time.Time { return now }
	_, err := v.Parse(signToken(t, "user-1", "", now, time.Minute))
	require.Error(t, err)
}

func TestParseIssuerMismatch(t *testing.T) {
	now := time.Now()
	token, err := jwt.NewBuilder().
		Issuer("someone-else").
		Subject("user-1").
		IssuedAt(now).
		Expiration(now.Add(time.Minute)).
		Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, []byte(testSecret)))
	require.NoError(t, err)

	_, err = newVerifier(now).Parse(string(signed))
	require.Error(t, err)
}

func TestRequireAuthMiddleware(t *testing.T) {
	now := time.Now()
	mw := Middleware{Verifier: newVerifier(now)}

	var gotUser, gotRole string
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = common.UserID(r.Context())
		gotRole, _ = common.Role(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user-1", "staff", now, time.Minute))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "user-1", gotUser)
	require.Equal(t, "staff", gotRole)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
