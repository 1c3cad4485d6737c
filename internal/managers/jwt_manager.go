package managers

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"rewear-server/internal/schemas"
	"rewear-server/internal/utils"
)

const (
	defaultTokenTTL   = 24 * time.Hour
	defaultRefreshTTL = 168 * time.Hour
	issuer            = "rewear.community"
)

type JWTMgr interface {
	GenerateJWT(userId, username string, refresh bool) (string, error)
	ValidateJWT(tokenString string) (jwt.Claims, error)
	JWTMiddleware() gin.HandlerFunc
}

// JWTManager handles JWT generation, signing, and validation.
// The signing key pair is fixed for the lifetime of the process; rotation
// is out of scope.
type JWTManager struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	tokenTTL   time.Duration
	refreshTTL time.Duration
	clock      func() time.Time
}

// Option configures a JWTManager at construction time.
type Option func(*JWTManager)

// WithClock replaces the wall clock, so expiry behavior can be tested.
func WithClock(clock func() time.Time) Option {
	return func(jm *JWTManager) {
		jm.clock = clock
	}
}

// WithTokenTTL sets the lifetime of access tokens.
func WithTokenTTL(ttl time.Duration) Option {
	return func(jm *JWTManager) {
		jm.tokenTTL = ttl
	}
}

// WithRefreshTTL sets the lifetime of refresh tokens.
func WithRefreshTTL(ttl time.Duration) Option {
	return func(jm *JWTManager) {
		jm.refreshTTL = ttl
	}
}

// NewJWTManager creates a new JWTManager with the given key pair.
func NewJWTManager(privateKey ed25519.PrivateKey, publicKey ed25519.PublicKey, options ...Option) JWTMgr {
	jm := &JWTManager{
		privateKey: privateKey,
		publicKey:  publicKey,
		tokenTTL:   defaultTokenTTL,
		refreshTTL: defaultRefreshTTL,
		clock:      time.Now,
	}

	for _, option := range options {
		option(jm)
	}

	return jm
}

// NewJWTManagerFromFile loads the key pair from KEY_PAIR_PATH, generating and
// persisting a new one on first startup, and reads the token TTLs from the
// environment.
func NewJWTManagerFromFile() (JWTMgr, error) {
	path := os.Getenv("KEY_PAIR_PATH")

	privateKey, publicKey, err := loadKeyPair(path)
	if err != nil {
		// No key yet for initial setup, generate a new key pair
		privateKey, publicKey, err = generateKeyPair(path)
		if err != nil {
			return nil, err
		}
	}

	options := []Option{
		WithTokenTTL(ttlFromEnv("TOKEN_TTL", defaultTokenTTL)),
		WithRefreshTTL(ttlFromEnv("REFRESH_TOKEN_TTL", defaultRefreshTTL)),
	}

	return NewJWTManager(privateKey, publicKey, options...), nil
}

// GenerateJWT generates a new signed JWT for the given user.
func (jm *JWTManager) GenerateJWT(userId, username string, refresh bool) (string, error) {
	ttl := jm.tokenTTL
	if refresh {
		ttl = jm.refreshTTL
	}

	now := jm.clock()
	claims := jwt.MapClaims{
		"iss":      issuer,
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
		"sub":      userId,
		"username": username,
		"refresh":  fmt.Sprintf("%t", refresh),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(jm.privateKey)
}

// ValidateJWT validates the given JWT and returns the claims if valid.
// Expired and tampered tokens both come back as errors; callers that face the
// outside world must not distinguish the two.
func (jm *JWTManager) ValidateJWT(tokenString string) (jwt.Claims, error) {
	parser := jwt.NewParser(jwt.WithTimeFunc(jm.clock))
	token, err := parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodEdDSA.Alg() {
			return nil, fmt.Errorf("invalid signing method")
		}

		return jm.publicKey, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}

	return token.Claims, nil
}

var errInvalidToken = errors.New("invalid token")

// JWTMiddleware authenticates a request via the Authorization header.
// Missing header, malformed token, bad signature, expiry and refresh-token
// misuse all produce the same unauthorized response, so no information about
// token validity leaks to the caller.
func (jm *JWTManager) JWTMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errInvalidToken)
			c.Abort()
			return
		}

		claims, err := jm.ValidateJWT(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errInvalidToken)
			c.Abort()
			return
		}

		mapClaims := claims.(jwt.MapClaims)
		if refresh, ok := mapClaims["refresh"].(string); ok && refresh == "true" {
			utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errInvalidToken)
			c.Abort()
			return
		}

		c.Set(utils.ClaimsKey.String(), mapClaims)
		c.Next()
	}
}

func ttlFromEnv(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	ttl, err := time.ParseDuration(value)
	if err != nil || ttl <= 0 {
		return fallback
	}
	return ttl
}

// generateKeyPair generates a new key pair and saves it to a file.
func generateKeyPair(path string) (ed25519.PrivateKey, ed25519.PublicKey, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}

	// Save the new key pair to a file for persistence
	if err = saveKeyPair(privateKey, publicKey, path); err != nil {
		return nil, nil, err
	}

	return privateKey, publicKey, nil
}

// saveKeyPair saves the key pair to the specified file.
func saveKeyPair(privateKey ed25519.PrivateKey, publicKey ed25519.PublicKey, path string) error {
	keyPairBytes := append(privateKey, publicKey...)
	return os.WriteFile(path, keyPairBytes, 0600)
}

// loadKeyPair loads the key pair from the specified file.
func loadKeyPair(path string) (ed25519.PrivateKey, ed25519.PublicKey, error) {
	keyPairBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	// The key pair is the concatenation of private and public keys
	if len(keyPairBytes) != ed25519.PrivateKeySize+ed25519.PublicKeySize {
		return nil, nil, fmt.Errorf("invalid key pair format")
	}

	privateKey := ed25519.PrivateKey(keyPairBytes[:ed25519.PrivateKeySize])
	publicKey := ed25519.PublicKey(keyPairBytes[ed25519.PrivateKeySize:])

	return privateKey, publicKey, nil
}
