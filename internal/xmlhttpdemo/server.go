// Package xmlhttpdemo is a minimal illustration of xmlserde/xmldyn
// running behind an HTTP transport — deliberately thin process-level
// glue, not a feature of the engine itself (spec §1's "no process-level
// glue" non-goal binds the library packages, not this demo).
//
// Route registration and request-body-to-response handling follow a
// webhook dispatch server's shape, rebuilt on chi rather than gorilla/mux.
package xmlhttpdemo

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is a tiny HTTP front end over the decode/encode/query
// operations: POST a document, get back its decoded/re-encoded/queried
// form. It exists to prove the engine works from behind a transport, not
// to be a complete API.
type Server struct {
	logger *slog.Logger
	mux    *chi.Mux
}

// New builds a Server ready to ListenAndServe (via its Handler).
func New(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{logger: logger, mux: chi.NewRouter()}

	s.mux.Use(middleware.RequestID)
	s.mux.Use(middleware.Recoverer)
	s.mux.Use(s.logRequests)

	s.mux.Post("/decode", s.handleDecode)
	s.mux.Post("/encode", s.handleEncode)
	s.mux.Post("/query", s.handleQuery)

	return s
}

// Handler returns the http.Handler to pass to http.Server/http.ListenAndServe.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Info("request", "method", r.Method, "path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + escapeJSON(err.Error()) + `"}`))
}

func escapeJSON(s string) string {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		switch r {
		case '"', '\\':
			out = append(out, '\\', byte(r))
		case '\n':
			out = append(out, '\\', 'n')
		default:
			out = append(out, string(r)...)
		}
	}
	return string(out)
}
