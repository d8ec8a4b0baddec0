package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/beatbox/internal/logging"
	"github.com/aretw0/beatbox/internal/presentation/graph"
	"github.com/aretw0/beatbox/pkg/audio"
	"github.com/aretw0/beatbox/pkg/domain"
	"github.com/aretw0/beatbox/pkg/grammar"
	"github.com/aretw0/beatbox/pkg/ports"
	"github.com/aretw0/beatbox/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DefaultMaxTerminals caps the output of the expand tool.
const DefaultMaxTerminals = 4096

var errLimitReached = errors.New("terminal limit reached")

// Engine is the subset of *beatbox.Engine the MCP server needs.
type Engine interface {
	Table() *grammar.Table
	Run(ctx context.Context, root string, sink ports.SampleSink) (runner.Result, error)
	CountAll(ctx context.Context, roots []string) (map[string]int, error)
	Validate(root string) (grammar.Report, error)
}

// ExpandArgs are the arguments of the expand tool.
type ExpandArgs struct {
	Start string `json:"start"`
	Limit int    `json:"limit,omitempty"`
}

// ExpandResult is the structured output of the expand tool.
type ExpandResult struct {
	Start     string `json:"start" jsonschema_description:"The start sequence"`
	Terminals string `json:"terminals" jsonschema_description:"The emitted terminals, in order"`
	Count     int    `json:"count" jsonschema_description:"Number of terminals returned"`
	Truncated bool   `json:"truncated" jsonschema_description:"Whether the stream continues past the limit"`
}

// CountArgs are the arguments of the count tool.
type CountArgs struct {
	Starts []string `json:"starts"`
}

// CountResult is the structured output of the count tool.
type CountResult struct {
	Counts  map[string]int     `json:"counts" jsonschema_description:"Terminal count per start sequence"`
	Seconds map[string]float64 `json:"seconds" jsonschema_description:"Audio length per start sequence at 8 kHz"`
}

// ValidateArgs are the arguments of the validate tool.
type ValidateArgs struct {
	Start string `json:"start"`
}

// ValidateResult is the structured output of the validate tool.
type ValidateResult struct {
	Reachable []string `json:"reachable" jsonschema_description:"Rules the start sequence can reach"`
	Unused    []string `json:"unused" jsonschema_description:"Rules it never reaches"`
	Terminals []string `json:"terminals" jsonschema_description:"Terminals it can emit"`
	Empty     []string `json:"empty" jsonschema_description:"Reachable rules with an empty replacement"`
}

// RulesResult is the structured output of the list_rules tool.
type RulesResult struct {
	Policy      string            `json:"policy"`
	Fingerprint string            `json:"fingerprint"`
	Lenient     bool              `json:"lenient"`
	Rules       map[string]string `json:"rules"`
}

// Server exposes the expansion engine as an MCP server.
type Server struct {
	engine       Engine
	mcpServer    *server.MCPServer
	logger       *slog.Logger
	maxTerminals int
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxTerminals caps the expand tool output.
func WithMaxTerminals(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxTerminals = n
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, version string, opts ...Option) *Server {
	mcpServer := server.NewMCPServer("beatbox-mcp", strings.TrimSpace(version),
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)
	s := &Server{
		engine:       engine,
		mcpServer:    mcpServer,
		logger:       logging.NewNop(),
		maxTerminals: DefaultMaxTerminals,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on the given port until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("expand",
		mcp.WithDescription("Expand a start sequence into its terminal stream."),
		mcp.WithString("start", mcp.Required(), mcp.Description("Start sequence, e.g. \"A\" or \"_B0\"")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of terminals to return")),
		mcp.WithOutputSchema[ExpandResult](),
	), mcp.NewStructuredToolHandler(s.handleExpand))

	s.mcpServer.AddTool(mcp.NewTool("count",
		mcp.WithDescription("Count the terminals (audio samples) each start sequence expands to."),
		mcp.WithArray("starts", mcp.Required(), mcp.WithStringItems(), mcp.Description("Start sequences")),
		mcp.WithOutputSchema[CountResult](),
	), mcp.NewStructuredToolHandler(s.handleCount))

	s.mcpServer.AddTool(mcp.NewTool("validate",
		mcp.WithDescription("Report which rules a start sequence can reach, without expanding it."),
		mcp.WithString("start", mcp.Required(), mcp.Description("Start sequence")),
		mcp.WithOutputSchema[ValidateResult](),
	), mcp.NewStructuredToolHandler(s.handleValidate))

	s.mcpServer.AddTool(mcp.NewTool("list_rules",
		mcp.WithDescription("List the loaded rule table."),
		mcp.WithOutputSchema[RulesResult](),
	), s.handleListRules)
}

func (s *Server) handleExpand(ctx context.Context, _ mcp.CallToolRequest, args ExpandArgs) (ExpandResult, error) {
	limit := s.maxTerminals
	if args.Limit > 0 && args.Limit < limit {
		limit = args.Limit
	}

	var sb strings.Builder
	_, err := s.engine.Run(ctx, args.Start, ports.SinkFunc(func(sym domain.Symbol) error {
		if sb.Len() >= limit {
			return errLimitReached
		}
		return sb.WriteByte(byte(sym))
	}))
	truncated := errors.Is(err, errLimitReached)
	if err != nil && !truncated {
		s.logger.Warn("MCP expand failed", "start", args.Start, "error", err)
		return ExpandResult{}, err
	}
	return ExpandResult{
		Start:     args.Start,
		Terminals: sb.String(),
		Count:     sb.Len(),
		Truncated: truncated,
	}, nil
}

func (s *Server) handleCount(ctx context.Context, _ mcp.CallToolRequest, args CountArgs) (CountResult, error) {
	if len(args.Starts) == 0 {
		return CountResult{}, errors.New("at least one start sequence is required")
	}
	counts, err := s.engine.CountAll(ctx, args.Starts)
	if err != nil {
		s.logger.Warn("MCP count failed", "error", err)
		return CountResult{}, err
	}
	seconds := make(map[string]float64, len(counts))
	for k, n := range counts {
		seconds[k] = float64(n) / audio.SampleRate
	}
	return CountResult{Counts: counts, Seconds: seconds}, nil
}

func (s *Server) handleValidate(_ context.Context, _ mcp.CallToolRequest, args ValidateArgs) (ValidateResult, error) {
	report, err := s.engine.Validate(args.Start)
	if err != nil {
		return ValidateResult{}, err
	}
	return ValidateResult{
		Reachable: symbolNames(report.Reachable),
		Unused:    symbolNames(report.Unused),
		Terminals: symbolNames(report.Terminals),
		Empty:     symbolNames(report.Empty),
	}, nil
}

func (s *Server) handleListRules(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rules := rulesOf(s.engine.Table())
	data, err := json.Marshal(rules)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultStructured(rules, string(data)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("beatbox://rules", "Loaded rule table",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(rulesOf(s.engine.Table()))
		if err != nil {
			return nil, fmt.Errorf("failed to encode rules: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "beatbox://rules",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource("beatbox://graph", "Rule reference graph (Mermaid)",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "beatbox://graph",
				MIMEType: "text/plain",
				Text:     graph.GenerateMermaid(s.engine.Table(), nil),
			},
		}, nil
	})
}

func rulesOf(t *grammar.Table) RulesResult {
	return RulesResult{
		Policy:      t.Policy().String(),
		Fingerprint: t.Fingerprint(),
		Lenient:     t.Lenient(),
		Rules:       t.Rules(),
	}
}

func symbolNames(syms []domain.Symbol) []string {
	out := make([]string, len(syms))
	for i, sym := range syms {
		out[i] = string(rune(sym))
	}
	return out
}
