package security

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Options controls signing parameters.
type Options struct {
	Secret []byte // HMAC secret (from ENV in production)
	Alg    string // HS256/HS384/HS512 (default HS256)
}

// Identity is the payload carried by a session credential.
type Identity struct {
	ID       string
	Username string
	Email    string
}

func (i Identity) Zero() bool { return i.ID == "" }

func DefaultOptions(secret []byte) Options {
	return Options{Secret: secret, Alg: "HS256"}
}

func signingMethod(alg string) (jwtlib.SigningMethod, error) {
	switch alg {
	case "", "HS256":
		return jwtlib.SigningMethodHS256, nil
	case "HS384":
		return jwtlib.SigningMethodHS384, nil
	case "HS512":
		return jwtlib.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("unsupported alg: %s", alg)
	}
}

// Generate signs a session credential for the given identity.
// The token carries no exp claim: sessions are unbounded and revoked
// only by clearing the cookie.
func Generate(opts Options, ident Identity) (string, error) {
	method, err := signingMethod(opts.Alg)
	if err != nil {
		return "", err
	}
	claims := jwtlib.MapClaims{
		"id":       ident.ID,
		"username": ident.Username,
		"email":    ident.Email,
		"iat":      time.Now().Unix(),
	}
	tok := jwtlib.NewWithClaims(method, claims)
	signed, err := tok.SignedString(opts.Secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

// Verify checks the signature and decodes the identity payload.
func Verify(opts Options, token string) (Identity, error) {
	parsed, err := jwtlib.Parse(token, func(t *jwtlib.Token) (interface{}, error) {
		// only the HMAC family is accepted
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected alg: %v", t.Header["alg"])
		}
		return opts.Secret, nil
	})
	if err != nil {
		return Identity{}, errors.Wrap(err, "parse token")
	}
	if !parsed.Valid {
		return Identity{}, errors.New("invalid token")
	}
	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return Identity{}, errors.New("unexpected claims type")
	}
	ident := Identity{
		ID:       claimString(claims, "id"),
		Username: claimString(claims, "username"),
		Email:    claimString(claims, "email"),
	}
	if ident.ID == "" {
		return Identity{}, errors.New("token has no id claim")
	}
	return ident, nil
}

func claimString(claims jwtlib.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
