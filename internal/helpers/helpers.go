package helpers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost      = 10
	TokenIssuer     = "travelease"
	ReferencePrefix = "TRV-"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenManager issues HS256 tokens and validates either those or, when a key
// set is attached, asymmetric tokens signed by an external issuer.
type TokenManager struct {
	secret []byte
	expiry time.Duration
	jwks   *keyfunc.JWKS
}

func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), expiry: expiry}
}

// WithJWKS attaches a remote key set used for RS/ES/EdDSA tokens.
func (tm *TokenManager) WithJWKS(jwks *keyfunc.JWKS) *TokenManager {
	tm.jwks = jwks
	return tm
}

// LoadJWKS fetches the key set at url and keeps it refreshed in the background
// until EndBackground is called.
func LoadJWKS(ctx context.Context, url string) (*keyfunc.JWKS, error) {
	jwks, err := keyfunc.Get(url, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS from %s: %w", url, err)
	}
	return jwks, nil
}

func (tm *TokenManager) Issue(userID int64, email string) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(tm.expiry)
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

func (tm *TokenManager) keyfunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
		return tm.secret, nil
	}
	if tm.jwks == nil {
		return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
	}
	return tm.jwks.Keyfunc(token)
}

func (tm *TokenManager) validMethods() []string {
	methods := []string{jwt.SigningMethodHS256.Alg()}
	if tm.jwks != nil {
		methods = append(methods, "RS256", "RS384", "RS512", "ES256", "ES384", "ES512", "PS256", "EdDSA")
	}
	return methods
}

func (tm *TokenManager) Validate(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, tm.keyfunc,
		jwt.WithValidMethods(tm.validMethods()),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30*time.Second),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !claims.resolveUserID() {
		return nil, fmt.Errorf("%w: token has no user id", ErrInvalidToken)
	}
	return claims, nil
}

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// dummyHash is compared against when a login email is unknown so both failure
// paths spend the same bcrypt time.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("travelease-placeholder"), BcryptCost)

func CompareDummyPassword(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// GenerateBookingReference returns TRV- followed by a random UUID in upper-case
// hex.
func GenerateBookingReference() string {
	return ReferencePrefix + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

func StringTrim(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
