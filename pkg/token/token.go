// token.go

package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jacl-coder/ArenaStrike-Server/config"
)

// Claims 访问令牌声明
type Claims struct {
	PlayerID int64  `json:"player_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Generate 为玩家签发HS256访问令牌
func Generate(playerID int64, username string) (string, error) {
	authConfig := config.GlobalConfig.Auth
	if authConfig.JWTSecret == "" {
		return "", fmt.Errorf("未配置JWT密钥")
	}

	ttl := time.Duration(authConfig.TokenTTLHours * float64(time.Hour))
	now := time.Now()

	claims := Claims{
		PlayerID: playerID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "arenastrike",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(authConfig.JWTSecret))
}

// Parse 验证令牌并返回声明
func Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("非预期的签名算法: %v", t.Header["alg"])
		}
		return []byte(config.GlobalConfig.Auth.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("令牌验证失败: %w", err)
	}
	if !t.Valid {
		return nil, fmt.Errorf("令牌无效")
	}
	return claims, nil
}
