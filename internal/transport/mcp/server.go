package mcp

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sandevgo/factbot/internal/core"
	"github.com/sandevgo/factbot/pkg/log"
	"github.com/sandevgo/factbot/pkg/srv"
)

var _ srv.Service = (*Server)(nil)

// Memory opens per-user fact stores.
type Memory interface {
	Facts(ctx context.Context, userID string) (core.FactStore, error)
}

// Server exposes the fact stores as MCP tools over stdio.
type Server struct {
	mcp    *server.MCPServer
	memory Memory
	topK   int
	in     io.Reader
	out    io.Writer
}

func NewServer(memory Memory, topK int) *Server {
	s := &Server{
		memory: memory,
		topK:   topK,
		in:     os.Stdin,
		out:    os.Stdout,
	}

	s.mcp = server.NewMCPServer(
		core.BotName,
		core.BotVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Long-term facts the chat bot remembers about its users. Facts are scoped per user id, e.g. discord_1234."),
	)

	s.mcp.AddTool(mcp.NewTool("search_facts",
		mcp.WithDescription("Find the stored facts about a user that are most similar to a query"),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("User id, e.g. discord_1234")),
		mcp.WithString("query", mcp.Required(), mcp.Description("Text to compare facts against")),
		mcp.WithNumber("top_k", mcp.Description("Maximum number of facts to return")),
	), mcp.NewTypedToolHandler(s.searchFacts))

	s.mcp.AddTool(mcp.NewTool("add_fact",
		mcp.WithDescription("Store a short fact about a user unless it is already stored verbatim"),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("User id, e.g. discord_1234")),
		mcp.WithString("fact", mcp.Required(), mcp.Description("Self-contained statement, e.g. \"Lives in Boston\"")),
	), mcp.NewTypedToolHandler(s.addFact))

	return s
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("serving mcp over stdio")
	return server.NewStdioServer(s.mcp).Listen(ctx, s.in, s.out)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return nil
}

type searchArgs struct {
	UserID string `json:"user_id"`
	Query  string `json:"query"`
	TopK   int    `json:"top_k"`
}

func (s *Server) searchFacts(ctx context.Context, _ mcp.CallToolRequest, args searchArgs) (*mcp.CallToolResult, error) {
	if args.UserID == "" || strings.TrimSpace(args.Query) == "" {
		return mcp.NewToolResultError("user_id and query are required"), nil
	}
	topK := args.TopK
	if topK <= 0 {
		topK = s.topK
	}

	store, err := s.memory.Facts(ctx, args.UserID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("open fact store: %v", err)), nil
	}
	docs, err := store.Query(ctx, args.Query, topK)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(docs) == 0 {
		return mcp.NewToolResultText("No facts stored for this user."), nil
	}

	var b strings.Builder
	for i, d := range docs {
		fmt.Fprintf(&b, "%d. %s\n", i+1, d.Content)
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

type addArgs struct {
	UserID string `json:"user_id"`
	Fact   string `json:"fact"`
}

func (s *Server) addFact(ctx context.Context, _ mcp.CallToolRequest, args addArgs) (*mcp.CallToolResult, error) {
	fact := strings.TrimSpace(args.Fact)
	if args.UserID == "" || fact == "" {
		return mcp.NewToolResultError("user_id and fact are required"), nil
	}

	store, err := s.memory.Facts(ctx, args.UserID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("open fact store: %v", err)), nil
	}

	near, err := store.Query(ctx, fact, s.topK)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	for _, d := range near {
		if d.Content == fact {
			return mcp.NewToolResultText("Already known: " + fact), nil
		}
	}

	doc, err := store.CreateDocument(ctx, fact)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("store failed: %v", err)), nil
	}

	log.FromCtx(ctx).Info().Str("user", args.UserID).Str("document", doc.ID).Msg("fact added over mcp")
	return mcp.NewToolResultText("Stored: " + doc.Content), nil
}
