// Package mcpserver exposes the context engine as Model Context Protocol
// tools over stdio, so editors and agents can inspect how a conversation
// would be planned and compressed without running a turn.
package mcpserver

import (
	"context"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	ctxengine "github.com/flemzord/careerai/internal/context"
	"github.com/flemzord/careerai/internal/memory"
	"github.com/flemzord/careerai/internal/planner"
)

// Name is the server name advertised during initialization.
const Name = "careerai"

// Options configures a Server. Nil fields select the engine defaults.
type Options struct {
	Version    string
	Planner    *planner.Planner
	Compressor *ctxengine.Compressor
	Extractor  *memory.EntityExtractor
	Estimator  ctxengine.TokenEstimator
	Logger     *slog.Logger
}

// Server wraps an MCP server with the engine tools registered.
type Server struct {
	mcp        *server.MCPServer
	planner    *planner.Planner
	compressor *ctxengine.Compressor
	extractor  *memory.EntityExtractor
	estimator  ctxengine.TokenEstimator
	logger     *slog.Logger
}

// New creates a Server with every tool registered.
func New(opts Options) *Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.Planner == nil {
		opts.Planner = planner.New(planner.DefaultTables())
	}
	if opts.Compressor == nil {
		opts.Compressor = ctxengine.NewCompressor(nil, nil, ctxengine.Defaults())
	}
	if opts.Extractor == nil {
		opts.Extractor = memory.NewEntityExtractor(nil)
	}
	if opts.Estimator == nil {
		opts.Estimator = ctxengine.NewCharEstimator(ctxengine.Defaults().CharsPerToken)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		planner:    opts.Planner,
		compressor: opts.Compressor,
		extractor:  opts.Extractor,
		estimator:  opts.Estimator,
		logger:     opts.Logger,
	}
	s.mcp = server.NewMCPServer(Name, opts.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Tools that classify career-guidance conversations, plan generation parameters and compress history into a memory block."),
	)
	s.registerTools()
	return s
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Serve speaks the protocol over in and out until ctx is cancelled or in
// is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	s.logger.Info("mcp server listening on stdio")
	return stdio.Listen(ctx, in, out)
}
