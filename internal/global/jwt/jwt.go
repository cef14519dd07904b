package jwt

import (
	"errors"
	"time"

	"civic-project-system/config"
	"civic-project-system/internal/model"

	"github.com/golang-jwt/jwt"
)

type Claims struct {
	UserID uint       `json:"user_id"`
	Role   model.Role `json:"role"`
	jwt.StandardClaims
}

func (c *Claims) GetUserID() uint {
	return c.UserID
}

func (c *Claims) GetRole() string {
	return string(c.Role)
}

func CreateToken(userID uint, role model.Role) (string, error) {
	cfg := config.Get().JWT
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(time.Duration(cfg.AccessExpire) * time.Second).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.AccessSecret))
}

// ParseToken 签名方法必须是 HMAC
func ParseToken(token string) (*Claims, bool) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.Get().JWT.AccessSecret), nil
	})
	if err != nil || !t.Valid {
		return nil, false
	}
	return claims, true
}
