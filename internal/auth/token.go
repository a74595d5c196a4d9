package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity 是会话令牌中携带的身份信息。
type Identity struct {
	ID       uint
	Username string
}

// Claims 固定为 HS256 签名的极简负载：身份两项加标准过期时间。
// 没有密钥轮换也没有吊销列表，过期是唯一的失效途径。
type Claims struct {
	UserID   uint   `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// ErrInvalidToken 统一表示令牌不可用：签名不符、格式错误、过期或缺字段。
var ErrInvalidToken = errors.New("invalid token")

// SignToken 签发一个 ttl 后过期的会话令牌。
func SignToken(id Identity, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   id.ID,
		Username: id.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyToken 校验令牌并取出身份。算法锁死 HS256，exp 必须存在且未过期，
// id 和 username 缺失或类型不对都按无效处理；任何解析失败只返回错误，不会 panic。
func VerifyToken(tokenStr, secret string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{},
		func(t *jwt.Token) (interface{}, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == 0 || claims.Username == "" {
		return nil, ErrInvalidToken
	}
	return &Identity{ID: claims.UserID, Username: claims.Username}, nil
}
