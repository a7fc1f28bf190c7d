package web

import (
	"context"
	"net/http"

	"github.com/bcnelson/srvadm-console/internal/service"
)

const sessionCookieName = "srvadm_session"

type contextKey string

const workspaceContextKey contextKey = "workspace"

// workspaceSession attaches the browser's workspace to the request,
// starting a new one when the cookie is missing or has expired.
func (s *Server) workspaceSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ws *service.Workspace

		if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
			ws, _ = s.sessions.Get(cookie.Value)
		}

		if ws == nil {
			created, err := s.sessions.Create()
			if err != nil {
				s.log.WithError(err).Error("Failed to create workspace")
				s.renderError(w, "Failed to start session", http.StatusInternalServerError)
				return
			}
			ws = created
			setSessionCookie(w, ws.ID)
		}

		ctx := context.WithValue(r.Context(), workspaceContextKey, ws)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// getWorkspace retrieves the workspace from context.
func getWorkspace(ctx context.Context) *service.Workspace {
	ws, _ := ctx.Value(workspaceContextKey).(*service.Workspace)
	return ws
}

// setSessionCookie sets the session cookie. It lives as long as the browser.
func setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
