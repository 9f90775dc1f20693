package paseto

import (
	"fmt"
	"time"

	"github.com/o1egl/paseto"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const challengeAudience = "mfa-challenge"

// Challenge is the state carried between the password step and the MFA step of a login.
type Challenge struct {
	UserID primitive.ObjectID
	Method string
}

// Maker encrypts short-lived MFA challenges with PASETO v2.local.
type Maker struct {
	paseto       *paseto.V2
	symmetricKey []byte
	ttl          time.Duration
}

func NewPasetoMaker(symmetricKey []byte, ttl time.Duration) (*Maker, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("PASETO v2 local requires a 32-byte key, got %d bytes", len(symmetricKey))
	}
	return &Maker{
		paseto:       paseto.NewV2(),
		symmetricKey: symmetricKey,
		ttl:          ttl,
	}, nil
}

func (m *Maker) GenerateChallenge(userID primitive.ObjectID, method string) (string, error) {
	now := time.Now()
	token := paseto.JSONToken{
		Audience:   challengeAudience,
		Subject:    userID.Hex(),
		IssuedAt:   now,
		Expiration: now.Add(m.ttl),
		NotBefore:  now,
	}
	token.Set("method", method)

	return m.paseto.Encrypt(m.symmetricKey, token, "")
}

func (m *Maker) VerifyChallenge(tokenString string) (*Challenge, error) {
	var token paseto.JSONToken
	var footer string

	if err := m.paseto.Decrypt(tokenString, m.symmetricKey, &token, &footer); err != nil {
		return nil, fmt.Errorf("failed to decrypt paseto token: %w", err)
	}

	if err := token.Validate(paseto.ForAudience(challengeAudience), paseto.ValidAt(time.Now())); err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	userID, err := primitive.ObjectIDFromHex(token.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}

	return &Challenge{UserID: userID, Method: token.Get("method")}, nil
}
