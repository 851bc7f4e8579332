package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"firebase.google.com/go/auth"
	"github.com/gin-gonic/gin"

	"larre/services"
)

// LocalUserID is the user every request acts as when auth is disabled.
const LocalUserID = "local"

type Identity struct {
	UserID string
	Email  string
}

// TokenVerifier turns a bearer token into the caller's identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// FirebaseVerifier checks Firebase ID tokens.
type FirebaseVerifier struct {
	Client *auth.Client
}

func (v FirebaseVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	t, err := v.Client.VerifyIDToken(ctx, token)
	if err != nil {
		return Identity{}, err
	}
	email, _ := t.Claims["email"].(string)
	return Identity{UserID: t.UID, Email: email}, nil
}

// HMACVerifier checks locally issued access tokens.
type HMACVerifier struct {
	Tokens *services.TokenService
}

func (v HMACVerifier) Verify(_ context.Context, token string) (Identity, error) {
	claims, err := v.Tokens.ParseAccessToken(token)
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserID: claims.UserID, Email: claims.Email}, nil
}

// AccessTokenMiddleware requires a valid bearer token and stores the caller's
// id under "userId". With a nil verifier every request is the local user.
func AccessTokenMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			c.Set("userId", LocalUserID)
			c.Next()
			return
		}

		header := c.Request.Header.Get("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), strings.TrimSpace(tokenString))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Token is expired or invalid: " + err.Error()})
			return
		}
		if identity.UserID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid userId in token claims"})
			return
		}

		c.Set("userId", identity.UserID)
		if identity.Email != "" {
			c.Set("email", identity.Email)
		}
		c.Next()
	}
}

// UserID reads the id AccessTokenMiddleware stored.
func UserID(c *gin.Context) string {
	if v, ok := c.Get("userId"); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return LocalUserID
}

// NewVerifier picks the verifier for an auth mode. "none" yields nil.
func NewVerifier(mode string, firebaseAuth *auth.Client, tokens *services.TokenService) (TokenVerifier, error) {
	switch mode {
	case "none", "":
		return nil, nil
	case "hmac":
		if tokens == nil {
			return nil, fmt.Errorf("hmac auth needs a token service")
		}
		return HMACVerifier{Tokens: tokens}, nil
	case "firebase":
		if firebaseAuth == nil {
			return nil, fmt.Errorf("firebase auth needs a configured Firebase project")
		}
		return FirebaseVerifier{Client: firebaseAuth}, nil
	}
	return nil, fmt.Errorf("unknown auth mode %q", mode)
}
