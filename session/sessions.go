package session

import (
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// TokenCache holds the live sessions by token. A token absent from the cache is revoked.
var TokenCache = cache.New(TokenExpiration, 1*time.Minute)

const KeySecCtx = "SecCtx"

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func ExtractSessionFromGinContext(ctx *gin.Context) *Session {
	value, found := ctx.Get(KeySecCtx)
	if !found {
		return &Session{Context: ctx.Request.Context()}
	}
	s0, ok := value.(*Session)
	if !ok || s0.Token == "" {
		return &Session{Context: ctx.Request.Context()}
	}
	s := s0.Clone()
	s.Context = ctx.Request.Context() // trace context
	return &s
}

// IdentityFilter resolves the caller from the bearer token. Requests without a valid live token
// continue anonymously; rejecting them is up to the route guards.
func IdentityFilter() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := BearerToken(ctx)
		if token != "" {
			if s := resolve(token); s != nil {
				InjectSessionIntoGinContext(ctx, s)
			}
		}
		ctx.Next()
	}
}

func resolve(token string) *Session {
	if ActiveTokenIssuer == nil {
		return nil
	}
	identity, err := ActiveTokenIssuer.Parse(token)
	if err != nil {
		logrus.Debugf("bearer token rejected: %v", err)
		return nil
	}
	value, found := TokenCache.Get(token)
	if !found {
		return nil
	}
	s, ok := value.(*Session)
	if !ok || s.Identity.ID != identity.ID {
		return nil
	}
	return s
}

// RevokeIdentity drops every live session of the identity and returns how many were dropped.
func RevokeIdentity(id types.ID) int {
	revoked := 0
	for token, item := range TokenCache.Items() {
		if s, ok := item.Object.(*Session); ok && s.Identity.ID == id {
			TokenCache.Delete(token)
			revoked++
		}
	}
	return revoked
}

func BearerToken(ctx *gin.Context) string {
	header := strings.TrimSpace(ctx.GetHeader("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func InjectSessionIntoGinContext(ctx *gin.Context, secCtx *Session) {
	if secCtx != nil && secCtx.Token != "" {
		ctx.Set(KeySecCtx, secCtx)
	}
}
