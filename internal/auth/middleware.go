package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SessionCookie 是浏览器侧保存会话令牌的 cookie 名。
const SessionCookie = "session"

const identityKey = "identity"

// TokenFromRequest 按 cookie、Authorization 头、token 查询参数的顺序取令牌。
// 查询参数主要给 WebSocket 握手用，浏览器的 WS API 设置不了自定义请求头。
func TokenFromRequest(c *gin.Context) string {
	if v, err := c.Cookie(SessionCookie); err == nil && v != "" {
		return v
	}
	authz := c.GetHeader("Authorization")
	if len(authz) > 7 && strings.EqualFold(authz[:7], "bearer ") {
		return strings.TrimSpace(authz[7:])
	}
	return c.Query("token")
}

// Middleware 保护需要登录的路由，校验通过后把身份放进请求上下文。
func Middleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, err := VerifyToken(token, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(identityKey, *id)
		c.Next()
	}
}

// CurrentUser 从请求上下文取出 Middleware 放入的身份。
func CurrentUser(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
