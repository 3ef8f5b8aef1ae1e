package infra

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kubev2v/task-scheduler/internal/server/middlewares"
)

// TokenIssuer signs RS256 tokens accepted by a scheduler started with the
// matching public key.
type TokenIssuer struct {
	privateKey *rsa.PrivateKey
	kid        string
}

// NewTokenIssuer generates a 2048-bit RSA key pair.
func NewTokenIssuer() (*TokenIssuer, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("generating RSA key: %w", err)
	}
	return &TokenIssuer{privateKey: privateKey, kid: uuid.NewString()}, nil
}

// LoadTokenIssuer reads a PEM encoded RSA private key.
func LoadTokenIssuer(path string) (*TokenIssuer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading private key: %w", err)
	}
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("parsing private key %s: %w", path, err)
	}
	return &TokenIssuer{privateKey: privateKey, kid: uuid.NewString()}, nil
}

// WritePublicKey writes the public key as PKIX PEM into dir and returns its path.
func (t *TokenIssuer) WritePublicKey(dir string) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(&t.privateKey.PublicKey)
	if err != nil {
		return "", fmt.Errorf("encoding public key: %w", err)
	}
	path := filepath.Join(dir, "auth-public-key.pem")
	if err := os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), 0o600); err != nil {
		return "", fmt.Errorf("writing public key: %w", err)
	}
	return path, nil
}

// GenerateToken creates a signed RS256 JWT for subject.
func (t *TokenIssuer) GenerateToken(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    "task-scheduler-e2e",
		Subject:   subject,
		ID:        uuid.NewString(),
		Audience:  jwt.ClaimStrings{middlewares.Audience},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = t.kid

	signed, err := token.SignedString(t.privateKey)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}
