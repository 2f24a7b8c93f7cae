package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateVerifyRoundTrip(t *testing.T) {
	req := require.New(t)
	opts := DefaultOptions([]byte("unit-test-secret"))

	ident := Identity{ID: "u1", Username: "alice", Email: "alice@example.com"}
	token, err := Generate(opts, ident)
	req.NoError(err)
	req.NotEmpty(token)

	got, err := Verify(opts, token)
	req.NoError(err)
	req.Equal(ident, got)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	req := require.New(t)
	opts := DefaultOptions([]byte("unit-test-secret"))

	token, err := Generate(opts, Identity{ID: "u1", Username: "alice"})
	req.NoError(err)

	parts := strings.Split(token, ".")
	req.Len(parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	_, err = Verify(opts, tampered)
	req.Error(err)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	req := require.New(t)

	token, err := Generate(DefaultOptions([]byte("secret-a")), Identity{ID: "u1"})
	req.NoError(err)

	_, err = Verify(DefaultOptions([]byte("secret-b")), token)
	req.Error(err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	req := require.New(t)
	_, err := Verify(DefaultOptions([]byte("s")), "not-a-token")
	req.Error(err)
}

func TestGenerateRejectsUnknownAlg(t *testing.T) {
	req := require.New(t)
	_, err := Generate(Options{Secret: []byte("s"), Alg: "RS256"}, Identity{ID: "u1"})
	req.Error(err)
}
