package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"careerbridge-service/internal/models"
	"careerbridge-service/internal/repositories"
)

// Context keys set for downstream handlers.
const (
	ContextParticipantIDKey = "participantID"
	ContextParticipantKey   = "participant"
)

var errInvalidToken = errors.New("invalid token")

// AuthMiddleware validates the bearer JWT and resolves the caller to a stable
// participant identity. The role always comes from the participant store, not
// from token claims.
func AuthMiddleware(secret string, participants repositories.ParticipantRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		participant, err := ResolveParticipant(c.Request.Context(), parts[1], secret, participants)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ContextParticipantIDKey, participant.ID)
		c.Set(ContextParticipantKey, participant)
		c.Next()
	}
}

// ResolveParticipant verifies the token and loads the participant row. Shared
// with the websocket handshake, which reads the token from header or query.
func ResolveParticipant(ctx context.Context, token string, secret string, participants repositories.ParticipantRepository) (models.Participant, error) {
	participantID, err := ParseSubject(token, secret)
	if err != nil {
		return models.Participant{}, err
	}
	return participants.Get(ctx, participantID)
}

// ParseSubject validates an HMAC-signed JWT and returns the participant id
// carried in the sub claim.
func ParseSubject(token string, secret string) (int, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return 0, errInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errInvalidToken
	}

	switch sub := claims["sub"].(type) {
	case string:
		id, err := strconv.Atoi(sub)
		if err != nil || id == 0 {
			return 0, errInvalidToken
		}
		return id, nil
	case float64:
		// numeric claims decode as float64
		if sub == 0 {
			return 0, errInvalidToken
		}
		return int(sub), nil
	}
	return 0, errInvalidToken
}

// ParticipantFromContext returns the resolved identity set by AuthMiddleware.
func ParticipantFromContext(c *gin.Context) (models.Participant, bool) {
	val, ok := c.Get(ContextParticipantKey)
	if !ok {
		return models.Participant{}, false
	}
	participant, ok := val.(models.Participant)
	return participant, ok
}
