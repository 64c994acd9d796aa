package middleware

import (
	"strings"

	"ajebo-payments/internal/commons/response"
	"ajebo-payments/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type AuthMiddleware struct {
	logger     *logrus.Logger
	jwtManager *token.TokenManager
}

func NewAuthMiddleware(logger *logrus.Logger, jwtManager *token.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{
		logger:     logger,
		jwtManager: jwtManager,
	}
}

// JWTAuth guards operator routes. The validated operator id is placed in the
// context under "operator_id".
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			resp := response.UnauthorizedError("Authorization header is required")
			c.AbortWithStatusJSON(resp.StatusCode, resp)
			return
		}

		bearerToken := strings.Split(authHeader, "Bearer ")
		if len(bearerToken) != 2 {
			resp := response.UnauthorizedError("Authorization header must be a bearer token")
			c.AbortWithStatusJSON(resp.StatusCode, resp)
			return
		}

		payload, err := m.jwtManager.ValidateToken(bearerToken[1])
		if err != nil {
			resp := response.UnauthorizedError(err.Error())
			c.AbortWithStatusJSON(resp.StatusCode, resp)
			return
		}

		operatorID, err := uuid.Parse(payload.AuthId)
		if err != nil {
			resp := response.UnauthorizedError("Invalid operator ID in token")
			c.AbortWithStatusJSON(resp.StatusCode, resp)
			return
		}

		c.Set("operator_id", operatorID)
		c.Next()
	}
}

// OptionalJWTAuth resolves the operator when a token is present but lets the
// request through either way. Used by operator registration, which also
// accepts the bootstrap token.
func (m *AuthMiddleware) OptionalJWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		bearerToken := strings.Split(authHeader, "Bearer ")
		if len(bearerToken) != 2 {
			c.Next()
			return
		}

		if payload, err := m.jwtManager.ValidateToken(bearerToken[1]); err == nil {
			if operatorID, err := uuid.Parse(payload.AuthId); err == nil {
				c.Set("operator_id", operatorID)
			}
		}

		c.Next()
	}
}
