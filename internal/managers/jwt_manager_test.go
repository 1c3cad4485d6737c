package managers

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func newTestKeyPair(t *testing.T) (ed25519.PrivateKey, ed25519.PublicKey) {
	t.Helper()
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("error generating key pair: %v", err)
	}
	return privateKey, publicKey
}

func TestGenerateAndValidateJWT(t *testing.T) {
	privateKey, publicKey := newTestKeyPair(t)
	jwtMgr := NewJWTManager(privateKey, publicKey)

	userId := uuid.New().String()
	token, err := jwtMgr.GenerateJWT(userId, "testUser", false)
	if err != nil {
		t.Fatalf("error generating token: %v", err)
	}

	claims, err := jwtMgr.ValidateJWT(token)
	if err != nil {
		t.Fatalf("error validating token: %v", err)
	}

	mapClaims := claims.(jwt.MapClaims)
	if mapClaims["sub"] != userId {
		t.Errorf("expected sub %q, got %q", userId, mapClaims["sub"])
	}
	if mapClaims["username"] != "testUser" {
		t.Errorf("expected username testUser, got %q", mapClaims["username"])
	}
	if mapClaims["refresh"] != "false" {
		t.Errorf("expected refresh false, got %q", mapClaims["refresh"])
	}
}

func TestRefreshTokenClaim(t *testing.T) {
	privateKey, publicKey := newTestKeyPair(t)
	jwtMgr := NewJWTManager(privateKey, publicKey)

	token, err := jwtMgr.GenerateJWT(uuid.New().String(), "testUser", true)
	if err != nil {
		t.Fatalf("error generating refresh token: %v", err)
	}

	claims, err := jwtMgr.ValidateJWT(token)
	if err != nil {
		t.Fatalf("error validating refresh token: %v", err)
	}

	if claims.(jwt.MapClaims)["refresh"] != "true" {
		t.Error("expected refresh claim to be true")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	privateKey, publicKey := newTestKeyPair(t)

	now := time.Now()
	clock := func() time.Time { return now }
	jwtMgr := NewJWTManager(privateKey, publicKey, WithClock(clock), WithTokenTTL(time.Hour))

	token, err := jwtMgr.GenerateJWT(uuid.New().String(), "testUser", false)
	if err != nil {
		t.Fatalf("error generating token: %v", err)
	}

	if _, err := jwtMgr.ValidateJWT(token); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}

	// Move the clock past the expiry
	now = now.Add(2 * time.Hour)
	if _, err := jwtMgr.ValidateJWT(token); err == nil {
		t.Error("expected expired token to be rejected")
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	privateKey, publicKey := newTestKeyPair(t)
	jwtMgr := NewJWTManager(privateKey, publicKey)

	token, err := jwtMgr.GenerateJWT(uuid.New().String(), "testUser", false)
	if err != nil {
		t.Fatalf("error generating token: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := jwtMgr.ValidateJWT(tampered); err == nil {
		t.Error("expected tampered token to be rejected")
	}
}

func TestForeignKeyRejected(t *testing.T) {
	privateKey, _ := newTestKeyPair(t)
	_, otherPublicKey := newTestKeyPair(t)

	signingMgr := NewJWTManager(privateKey, nil)
	validatingMgr := NewJWTManager(nil, otherPublicKey)

	token, err := signingMgr.GenerateJWT(uuid.New().String(), "testUser", false)
	if err != nil {
		t.Fatalf("error generating token: %v", err)
	}

	if _, err := validatingMgr.ValidateJWT(token); err == nil {
		t.Error("expected token signed with another key to be rejected")
	}
}
