package router

import (
	"net/http"
	"strings"

	"github.com/carewell-ai/care-assistant/internal/chat"
	"github.com/carewell-ai/care-assistant/internal/identity"
	"github.com/carewell-ai/care-assistant/internal/security"
)

// resolveSessionUser middleware resolves the session token header to a user
// id. Requests without a valid token pass through unauthenticated.
func resolveSessionUser(tokens *security.TokenRegistry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.Header.Get(chat.SessionTokenHeader))
			if token != "" {
				if userID, ok := tokens.Resolve(token); ok {
					r = r.WithContext(identity.WithUserID(r.Context(), userID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
