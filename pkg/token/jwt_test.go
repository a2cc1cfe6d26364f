package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/marketplace/domain"
)

func session(expires time.Time) *domain.Session {
	return &domain.Session{ID: "sess-1", UserID: "u1", CreatedAt: expires.Add(-time.Hour), ExpiresAt: expires}
}

func TestIssueAndParse(t *testing.T) {
	issuer := NewIssuer("secret", "marketplace")
	expires := time.Now().Add(time.Hour).Truncate(time.Second)

	raw, err := issuer.Issue(session(expires))
	require.NoError(t, err)

	sid, err := issuer.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", sid)
}

func TestParseIgnoresTokenExpiry(t *testing.T) {
	issuer := NewIssuer("secret", "marketplace")
	raw, err := issuer.Issue(session(time.Now().Add(-time.Hour)))
	require.NoError(t, err)

	sid, err := issuer.Parse(raw)
	require.NoError(t, err, "the session record decides expiry")
	assert.Equal(t, "sess-1", sid)
}

func TestParseRejectsForeignTokens(t *testing.T) {
	raw, err := NewIssuer("secret", "marketplace").Issue(session(time.Now().Add(time.Hour)))
	require.NoError(t, err)

	_, err = NewIssuer("other-secret", "marketplace").Parse(raw)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = NewIssuer("secret", "someone-else").Parse(raw)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = NewIssuer("secret", "marketplace").Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParseRejectsMissingSessionAndAlgorithm(t *testing.T) {
	issuer := NewIssuer("secret", "")

	noSID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = issuer.Parse(noSID)
	assert.ErrorIs(t, err, ErrInvalid)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{SessionID: "s"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = issuer.Parse(hs512)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestIssueRequiresSession(t *testing.T) {
	_, err := NewIssuer("secret", "").Issue(&domain.Session{})
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}
