package identity

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/edumatrix/edumatrix/internal/platform/httpx"
	"github.com/edumatrix/edumatrix/internal/shared"
)

// Authenticator attaches a Principal to the request context when the request
// carries a valid bearer token or a session holding one. Requests without
// valid credentials continue anonymously; guards further down reject them.
type Authenticator struct {
	Tokens *TokenIssuer
	Logger *slog.Logger
}

// Middleware implements the chi middleware signature.
func (a Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, fromSession := a.credential(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		p, err := a.Tokens.Verify(raw)
		if err != nil {
			if a.Logger != nil {
				a.Logger.Debug("identity: rejected credential", slog.Bool("session", fromSession), slog.Any("error", err))
			}
			next.ServeHTTP(w, r)
			return
		}
		if fromSession {
			// A session token must belong to the user the session was signed in as.
			if sess := shared.SessionFromContext(r.Context()); sess == nil || sess.User() != p.UserID {
				next.ServeHTTP(w, r)
				return
			}
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

func (a Authenticator) credential(r *http.Request) (string, bool) {
	if token, ok := BearerToken(r); ok {
		return token, false
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil && sess.AccessToken() != "" {
		return sess.AccessToken(), true
	}
	return "", false
}

// BearerToken extracts the token from an Authorization: Bearer header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}

// RequireAuthenticated rejects anonymous requests with 401.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			httpx.RespondError(w, httpx.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}
