package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"go-blog-app/internal/auth"
	"go-blog-app/internal/logger"

	"github.com/casbin/casbin/v2"
)

const subjectContextKey = contextKey("subject")

// Authorizer checks every request against the Casbin policies. Callers
// presenting adminToken as a bearer token act as the admin; everyone else is
// anonymous. An empty adminToken means nobody is admin.
func Authorizer(e casbin.IEnforcer, adminToken string, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := subjectFor(r, adminToken)
			r = r.WithContext(context.WithValue(r.Context(), subjectContextKey, subject))

			allowed, err := e.Enforce(subject, r.URL.Path, r.Method)
			if err != nil {
				LoggerFrom(r.Context(), log).Error(err, "Authorization check failed")
				WriteJSON(w, http.StatusInternalServerError, errorBody{
					Error:  "Authorization error",
					Status: http.StatusInternalServerError,
				})
				return
			}
			if !allowed {
				WriteJSON(w, http.StatusForbidden, errorBody{
					Error:  http.StatusText(http.StatusForbidden),
					Status: http.StatusForbidden,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func subjectFor(r *http.Request, adminToken string) string {
	if adminToken == "" {
		return auth.Anonymous
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if ok && subtle.ConstantTimeCompare([]byte(token), []byte(adminToken)) == 1 {
		return auth.Admin
	}
	return auth.Anonymous
}

// Subject returns the authorization subject of the request.
func Subject(ctx context.Context) string {
	if s, ok := ctx.Value(subjectContextKey).(string); ok {
		return s
	}
	return auth.Anonymous
}
