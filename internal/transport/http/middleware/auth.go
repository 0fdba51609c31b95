package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Boyan92/SalaryCalculatorNew/internal/domain/auth"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

// Authenticator resolves a bearer token into the caller.
type Authenticator interface {
	Authenticate(token string) (auth.UserContext, error)
}

// Auth attaches the caller when a valid bearer token is present. It never rejects;
// RequireRole does.
func Auth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if parts := strings.Fields(r.Header.Get("Authorization")); len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				token = parts[1]
			}

			user, err := authn.Authenticate(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(auth.UserContext)
	return user, ok
}
