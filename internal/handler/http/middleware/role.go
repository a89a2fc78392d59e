package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
)

// RequireCapability lets the request through only when the caller's role
// capability satisfies allow. name appears in the error message.
func RequireCapability(name string, allow func(user.Capability) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Unauthorized")
				return
			}

			if !allow(actor.Capability()) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s', but user role is '%s'", name, actor.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequirePolicyManager allows roles that may change the work hour policy.
func RequirePolicyManager(next http.Handler) http.Handler {
	return RequireCapability("manage_policy", func(c user.Capability) bool { return c.ManagePolicy })(next)
}

// RequireEmployee allows callers whose token carries an employee id.
func RequireEmployee(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok {
			response.Unauthorized(w, "Unauthorized")
			return
		}
		if actor.EmployeeID == "" {
			response.HandleError(w, user.ErrEmployeeIDRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}
