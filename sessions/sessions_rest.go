package sessions

import (
	"net/http"
	"time"

	"orghub/account"
	"orghub/authority"
	"orghub/bizerror"
	"orghub/misc"
	"orghub/persistence"
	"orghub/session"

	"github.com/gin-gonic/gin"
)

var (
	PathLogin   = "/login"
	PathLogout  = "/logout"
	PathSession = "/session"
)

// RegisterLoginRestAPI exposes the public login endpoint.
func RegisterLoginRestAPI(r *gin.Engine) {
	r.POST(PathLogin, handleLogin)
}

// RegisterSessionRestAPI exposes logout and session detail, middleWares must require an identity.
func RegisterSessionRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	r.POST(PathLogout, append(middleWares, handleLogout)...)
	r.GET(PathSession, append(middleWares, handleDetailSession)...)
}

func handleLogin(c *gin.Context) {
	login := session.LoginRequest{}
	bizerror.MustBindJSON(c, &login)

	s := session.ExtractSessionFromGinContext(c)
	user, err := account.VerifyCredentials(login.Email, login.Password, s)
	if err != nil {
		panic(err)
	}
	grants, err := authority.LoadGrantsFunc(persistence.ActiveDataSourceManager.GormDB(s.TraceContext()), user.ID)
	if err != nil {
		panic(err)
	}

	now := time.Now()
	identity := session.Identity{ID: user.ID, Name: user.Name, Email: user.Email}
	token, err := session.ActiveTokenIssuer.Issue(identity, now)
	if err != nil {
		panic(err)
	}
	established := session.Session{Token: token, Identity: identity, Perms: grants.Permissions, Roles: grants.Roles, SigningTime: now}
	session.TokenCache.Set(token, &established, tokenTTL())

	misc.Success(c, http.StatusOK, "Login successful", &established)
}

func handleLogout(c *gin.Context) {
	s := session.ExtractSessionFromGinContext(c)
	session.TokenCache.Delete(s.Token)
	misc.Success(c, http.StatusOK, "Logged out successfully", nil)
}

// handleDetailSession answers the current session with grants recomputed from the store.
func handleDetailSession(c *gin.Context) {
	s := session.ExtractSessionFromGinContext(c)
	ttl := tokenTTL() - time.Since(s.SigningTime)
	if ttl <= 0 {
		session.TokenCache.Delete(s.Token)
		panic(bizerror.ErrUnauthenticated)
	}
	grants, err := authority.LoadGrantsFunc(persistence.ActiveDataSourceManager.GormDB(s.TraceContext()), s.Identity.ID)
	if err != nil {
		panic(err)
	}
	refreshed := session.Session{Token: s.Token, Identity: s.Identity, Perms: grants.Permissions, Roles: grants.Roles,
		SigningTime: s.SigningTime}
	session.TokenCache.Set(s.Token, &refreshed, ttl)

	misc.Success(c, http.StatusOK, "Session retrieved successfully", &refreshed)
}

func tokenTTL() time.Duration {
	if session.ActiveTokenIssuer != nil && session.ActiveTokenIssuer.TTL > 0 {
		return session.ActiveTokenIssuer.TTL
	}
	return session.TokenExpiration
}
