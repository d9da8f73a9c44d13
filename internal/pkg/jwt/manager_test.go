package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Secret:   "test-secret",
		Issuer:   "agentmarket",
		Audience: "agentmarket-users",
		TTL:      time.Hour,
	}
}

func TestManager_GenerateAndVerify(t *testing.T) {
	m, err := NewManager(testConfig())
	require.NoError(t, err)

	token, err := m.Generate(42, "buyer@example.com", "buyer")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.UserID)
	require.Equal(t, "buyer@example.com", claims.Email)
	require.Equal(t, "buyer", claims.Role)
	require.Equal(t, "42", claims.Subject)
	require.NotEmpty(t, claims.ID)
}

func TestManager_RequiresSecret(t *testing.T) {
	cfg := testConfig()
	cfg.Secret = ""
	_, err := NewManager(cfg)
	require.Error(t, err)
}

func TestManager_RejectsWrongSecret(t *testing.T) {
	m1, err := NewManager(testConfig())
	require.NoError(t, err)

	other := testConfig()
	other.Secret = "other-secret"
	m2, err := NewManager(other)
	require.NoError(t, err)

	token, err := m1.Generate(42, "buyer@example.com", "buyer")
	require.NoError(t, err)

	_, err = m2.Verify(token)
	require.Error(t, err)
}

func TestManager_RejectsExpired(t *testing.T) {
	cfg := testConfig()
	cfg.TTL = -time.Minute
	m := &Manager{cfg: cfg}

	token, err := m.Generate(42, "buyer@example.com", "buyer")
	require.NoError(t, err)

	_, err = m.Verify(token)
	require.Error(t, err)
}

func TestManager_RejectsWrongAudience(t *testing.T) {
	cfg := testConfig()
	cfg.Audience = "some-other-service"
	m1, err := NewManager(cfg)
	require.NoError(t, err)

	m2, err := NewManager(testConfig())
	require.NoError(t, err)

	token, err := m1.Generate(42, "buyer@example.com", "buyer")
	require.NoError(t, err)

	_, err = m2.Verify(token)
	require.Error(t, err)
}

func TestClaims_HasRole(t *testing.T) {
	c := &Claims{Role: "admin"}
	require.True(t, c.HasRole("admin"))
	require.True(t, c.IsAdmin())
	require.False(t, c.HasRole("seller"))

	c = &Claims{Role: "buyer"}
	require.False(t, c.IsAdmin())
}
