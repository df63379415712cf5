package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_Generate_Then_Validate(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("unit-test-secret", time.Hour)

	token, err := issuer.Generate("user-1", "alice@example.com", []string{"user"})
	req.NoError(err)

	claims, err := issuer.Validate(token)
	req.NoError(err)
	req.Equal("user-1", claims.UserID)
	req.Equal("alice@example.com", claims.Email)
	req.Equal([]string{"user"}, claims.Roles)
	req.Equal("personal-chat", claims.Issuer)
}

func TestTokenIssuer_Validate_Rejects_Wrong_Key(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("unit-test-secret", time.Hour)
	other := NewTokenIssuer("a-different-secret", time.Hour)

	token, err := issuer.Generate("user-1", "alice@example.com", nil)
	req.NoError(err)

	_, err = other.Validate(token)
	req.Error(err)
}

func TestTokenIssuer_Validate_Rejects_Expired_Token(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("unit-test-secret", -time.Minute)

	token, err := issuer.Generate("user-1", "alice@example.com", nil)
	req.NoError(err)

	_, err = issuer.Validate(token)
	req.Error(err)
}

func TestTokenIssuer_Validate_Rejects_Garbage(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("unit-test-secret", time.Hour)

	_, err := issuer.Validate("definitely.not.ajwt")
	req.Error(err)
}
