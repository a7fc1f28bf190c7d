package api

import (
	"net/http"

	"github.com/bcnelson/srvadm-console/internal/api/middleware"
	"github.com/bcnelson/srvadm-console/internal/service"
	"github.com/bcnelson/srvadm-console/internal/web"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// NewRouter creates a new HTTP router with all routes configured.
func NewRouter(sessions *service.Sessions, directory *service.Directory, log *logrus.Entry) http.Handler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging(log))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount web UI
	r.Mount("/", web.NewRouter(sessions, directory, log))

	return r
}
