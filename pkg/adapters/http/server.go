package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aretw0/beatbox/internal/logging"
	"github.com/aretw0/beatbox/pkg/audio"
	"github.com/aretw0/beatbox/pkg/grammar"
	"github.com/aretw0/beatbox/pkg/ports"
	"github.com/aretw0/beatbox/pkg/runner"
	"github.com/aretw0/beatbox/pkg/session"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultMaxTerminals caps /expand responses when the request sets no limit, and
// bounds /count and /render expansions.
const DefaultMaxTerminals = 1 << 16

// Engine is the subset of *beatbox.Engine the server needs.
type Engine interface {
	Table() *grammar.Table
	Run(ctx context.Context, root string, sink ports.SampleSink) (runner.Result, error)
	NewSink() *audio.Sink
}

// Server implements the HTTP API.
type Server struct {
	engine       Engine
	sessions     *session.Manager
	gatherer     prometheus.Gatherer
	logger       *slog.Logger
	maxTerminals int
	version      string

	spec      *openapi3.T
	validator bodyValidator
}

// Option configures the Server.
type Option func(*Server)

// WithSessions enables the /sessions endpoints.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.sessions = m
	}
}

// WithMetrics exposes g on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxTerminals caps how many terminals one /expand or /next call may return.
func WithMaxTerminals(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxTerminals = n
		}
	}
}

// WithVersion sets the build version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// NewHandler creates the http.Handler for the API.
func NewHandler(engine Engine, opts ...Option) (http.Handler, error) {
	s, err := NewServer(engine, opts...)
	if err != nil {
		return nil, err
	}
	return s.Routes(), nil
}

// NewServer builds a Server after validating the embedded OpenAPI document.
func NewServer(engine Engine, opts ...Option) (*Server, error) {
	doc, err := LoadSpec(context.Background())
	if err != nil {
		return nil, err
	}
	s := &Server{
		engine:       engine,
		logger:       logging.NewNop(),
		maxTerminals: DefaultMaxTerminals,
		version:      "dev",
		spec:         doc,
		validator:    bodyValidator{doc: doc},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Routes mounts every endpoint on a chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/healthz", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/rules", s.GetRules)
	r.Get("/graph", s.GetGraph)
	r.Post("/expand", s.Expand)
	r.Post("/count", s.Count)
	r.Post("/render", s.Render)

	if s.sessions != nil {
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.ListSessions)
			r.Post("/", s.CreateSession)
			r.Get("/{id}", s.GetSession)
			r.Delete("/{id}", s.DeleteSession)
			r.Post("/{id}/next", s.NextTerminals)
		})
	}

	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		if _, err := w.Write(specYAML); err != nil {
			s.logger.Error("failed to write openapi spec", "error", err)
		}
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})

	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>beatbox API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`
