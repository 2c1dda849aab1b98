package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"teamchat-service/internal/response"
)

var (
	ErrSecretNotConfigured = errors.New("token secret not configured")
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenRevoked        = errors.New("token rejected by auth service")
)

// userIDClaims are checked in order.
var userIDClaims = []string{"sub", "userId", "user_id", "id"}

type TokenValidator interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// JWTValidator verifies HMAC-signed tokens locally and, when an auth-service
// URL is set, asks the auth-service whether the token is still valid.
// Without a secret every token is rejected.
type JWTValidator struct {
	authServiceURL string
	secretKey      []byte
	httpClient     *http.Client
	logger         *zap.Logger
}

func NewJWTValidator(authServiceURL, secretKey string, logger *zap.Logger) *JWTValidator {
	return &JWTValidator{
		authServiceURL: strings.TrimRight(authServiceURL, "/"),
		secretKey:      []byte(secretKey),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		logger: logger,
	}
}

func (v *JWTValidator) VerifyToken(ctx context.Context, tokenString string) (string, error) {
	if len(v.secretKey) == 0 {
		return "", ErrSecretNotConfigured
	}

	userID, err := v.validateLocally(tokenString)
	if err != nil {
		return "", err
	}

	if v.authServiceURL != "" {
		if err := v.checkWithAuthService(ctx, tokenString); err != nil {
			v.logger.Debug("Auth service rejected token", zap.String("userId", userID), zap.Error(err))
			return "", err
		}
	}

	return userID, nil
}

func (v *JWTValidator) validateLocally(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secretKey, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	for _, key := range userIDClaims {
		if val, ok := claims[key].(string); ok && val != "" {
			id, err := uuid.Parse(val)
			if err != nil {
				return "", fmt.Errorf("%w: user id is not a uuid", ErrInvalidToken)
			}
			return id.String(), nil
		}
	}
	return "", fmt.Errorf("%w: no user id claim", ErrInvalidToken)
}

func (v *JWTValidator) checkWithAuthService(ctx context.Context, token string) error {
	url := v.authServiceURL + "/api/auth/validate"

	reqBody, _ := json.Marshal(map[string]string{"token": token})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ErrTokenRevoked
	}

	var result struct {
		Valid *bool `json:"valid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil && result.Valid != nil && !*result.Valid {
		return ErrTokenRevoked
	}
	return nil
}

const (
	userIDKey = "userId"
	tokenKey  = "token"
)

// AuthMiddleware validates JWT token from Authorization header
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "No authorization header")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid authorization header format")
			c.Abort()
			return
		}

		tokenString := parts[1]
		userID, err := validator.VerifyToken(c.Request.Context(), tokenString)
		if err != nil {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid token")
			c.Abort()
			return
		}

		c.Set(userIDKey, userID)
		c.Set(tokenKey, tokenString)
		c.Next()
	}
}

// GetUserID returns the authenticated user id set by AuthMiddleware.
func GetUserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
