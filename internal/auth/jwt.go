package auth

import (
	"crypto/subtle"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/example/commerceops/internal/config"
	"github.com/example/commerceops/internal/errs"
)

// RoleAdmin 目前只有一个管理员角色
const RoleAdmin = "admin"

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Login 校验管理员账号密码并签发 token
func Login(jwtCfg *config.JWTConfig, admin *config.AdminConfig, email, password string) (string, error) {
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(admin.Email)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(admin.Password)) == 1
	if !emailOK || !passOK {
		return "", errs.New(errs.Unauthorized, "invalid email or password")
	}
	return GenerateToken(jwtCfg, email)
}

// GenerateToken 生成 JWT
func GenerateToken(cfg *config.JWTConfig, email string) (string, error) {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	now := time.Now()
	claims := Claims{
		Email: email,
		Role:  RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

// ParseToken 解析并校验 JWT，只接受 HS256 签发的管理员 token
func ParseToken(cfg *config.JWTConfig, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, errs.Wrap(errs.Unauthorized, err, "invalid or expired token")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Role != RoleAdmin {
		return nil, errs.New(errs.Unauthorized, "invalid or expired token")
	}
	return claims, nil
}
