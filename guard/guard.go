package guard

import (
	"fmt"

	"orghub/authority"
	"orghub/bizerror"
	"orghub/persistence"
	"orghub/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Rule requires every listed permission and every listed role for the named actions.
type Rule struct {
	Actions     []string
	Permissions []string
	Roles       []string
}

// Policy is the authorization configuration of one controller. All rules naming an action apply to it.
type Policy []Rule

func (p Policy) requirementsOf(action string) (perms []string, roles []string) {
	for _, rule := range p {
		for _, a := range rule.Actions {
			if a == action {
				perms = append(perms, rule.Permissions...)
				roles = append(roles, rule.Roles...)
				break
			}
		}
	}
	return perms, roles
}

// Guard builds the middleware protecting action. Anonymous callers and callers missing any requirement
// are denied with the same response, the wrapped handler never runs for them. A store failure while
// loading grants is an internal error, not a denial.
func (p Policy) Guard(action string) gin.HandlerFunc {
	perms, roles := p.requirementsOf(action)
	return func(c *gin.Context) {
		s := session.ExtractSessionFromGinContext(c)
		if s.Anonymous() {
			panic(bizerror.ErrForbidden)
		}
		if len(perms) == 0 && len(roles) == 0 {
			c.Next()
			return
		}

		grants, err := authority.LoadGrantsFunc(persistence.ActiveDataSourceManager.GormDB(s.TraceContext()), s.Identity.ID)
		if err != nil {
			panic(fmt.Errorf("load grants of user %d: %w", s.Identity.ID, err))
		}
		for _, perm := range perms {
			if !grants.HasPermission(perm) {
				logrus.WithField("uid", s.Identity.ID).WithField("action", action).Debug("permission missing")
				panic(bizerror.ErrForbidden)
			}
		}
		for _, role := range roles {
			if !grants.HasRole(role) {
				logrus.WithField("uid", s.Identity.ID).WithField("action", action).Debug("role missing")
				panic(bizerror.ErrForbidden)
			}
		}
		c.Next()
	}
}

// RequirePermissions guards every route of a group with the same permissions.
func RequirePermissions(perms ...string) gin.HandlerFunc {
	return Policy{{Actions: []string{"*"}, Permissions: perms}}.Guard("*")
}

// Authenticated only requires a resolved identity.
func Authenticated() gin.HandlerFunc {
	return Policy{}.Guard("")
}
