package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const (
	ContextUserID    = "user_id"
	ContextCompanyID = "company_id"
)

// Claims identifies the caller and the tenant the request acts on.
type Claims struct {
	UserID    uint `json:"user_id"`
	CompanyID uint `json:"company_id"`
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for a user of a company.
func GenerateToken(secret string, userID, companyID uint, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:    userID,
		CompanyID: companyID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateToken(secret, tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.CompanyID == 0 {
		return nil, errors.New("token has no company_id")
	}
	return claims, nil
}

// RequireAuth ensures a valid bearer JWT is present and stores its claims
// in the context.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}

		claims, err := ValidateToken(secret, strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			logrus.WithError(err).Debug("RequireAuth: rejected token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextCompanyID, claims.CompanyID)
		c.Next()
	}
}
