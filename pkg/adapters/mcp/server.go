package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/pagecraft"
	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/aretw0/pagecraft/pkg/history"
	"github.com/aretw0/pagecraft/pkg/node"
	"github.com/aretw0/pagecraft/pkg/page"
	"github.com/aretw0/pagecraft/pkg/schema"
)

const pagesURI = "pagecraft://pages"

// Server exposes an Editor as MCP tools so an agent can read and edit
// pages.
type Server struct {
	editor    *pagecraft.Editor
	mcpServer *server.MCPServer
	log       *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// NewServer creates a new MCP Server instance.
func NewServer(ed *pagecraft.Editor, version string, opts ...Option) *Server {
	s := &Server{
		editor:    ed,
		mcpServer: server.NewMCPServer("pagecraft-mcp", version),
		log:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.log.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
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

type handler func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)

func (s *Server) registerTools() {
	pageID := mcp.WithString("page_id", mcp.Required(), mcp.Description("Page identifier"))
	nodeID := mcp.WithString("node_id", mcp.Required(), mcp.Description("Node identifier"))

	tools := []struct {
		tool mcp.Tool
		fn   handler
	}{
		{mcp.NewTool("list_pages",
			mcp.WithDescription("List the ids of every stored page."),
		), s.handleListPages},
		{mcp.NewTool("get_page",
			mcp.WithDescription("Return the page schema: its component tree, params and addons."),
			pageID,
		), s.handleGetPage},
		{mcp.NewTool("insert_node",
			mcp.WithDescription("Insert a component into a container node."),
			pageID,
			mcp.WithString("parent_id", mcp.Required(), mcp.Description("Container node")),
			mcp.WithString("node", mcp.Required(), mcp.Description("JSON component schema, e.g. {\"componentName\":\"Text\"}")),
			mcp.WithNumber("index", mcp.Description("Position among the children; appends when omitted")),
		), s.handleInsertNode},
		{mcp.NewTool("move_node",
			mcp.WithDescription("Move a node under another container."),
			pageID, nodeID,
			mcp.WithString("parent_id", mcp.Required(), mcp.Description("New container")),
			mcp.WithNumber("index", mcp.Description("Position among the children; appends when omitted")),
		), s.handleMoveNode},
		{mcp.NewTool("set_prop",
			mcp.WithDescription("Set a prop of a node. Nested props use dotted paths."),
			pageID, nodeID,
			mcp.WithString("path", mcp.Required(), mcp.Description("Prop path, e.g. style.color")),
			mcp.WithString("value", mcp.Required(), mcp.Description("JSON value")),
		), s.handleSetProp},
		{mcp.NewTool("remove_node",
			mcp.WithDescription("Remove a node and its subtree."),
			pageID, nodeID,
		), s.handleRemoveNode},
		{mcp.NewTool("undo",
			mcp.WithDescription("Step the page history back."),
			pageID,
		), s.historyHandler((*history.History).Back)},
		{mcp.NewTool("redo",
			mcp.WithDescription("Step the page history forward."),
			pageID,
		), s.historyHandler((*history.History).Forward)},
		{mcp.NewTool("save_page",
			mcp.WithDescription("Write the page to the store."),
			pageID,
		), s.handleSavePage},
		{mcp.NewTool("validate_page",
			mcp.WithDescription("Check every prop against the type its component declares."),
			pageID,
		), s.handleValidatePage},
	}
	for _, t := range tools {
		s.mcpServer.AddTool(t.tool, server.ToolHandlerFunc(t.fn))
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(pagesURI, "Stored pages",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.editor.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list pages: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      pagesURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

func (s *Server) handleListPages(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := s.editor.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	if ids == nil {
		ids = []string{}
	}
	return jsonResult(ids)
}

func (s *Server) handleGetPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.edit(ctx, req, func(p *page.Page) (any, error) {
		return p.ToData(), nil
	})
}

func (s *Server) handleInsertNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	parentID, err := req.RequireString("parent_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("node")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var data schema.ComponentSchema
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid node: %v", err)), nil
	}
	if data.ComponentName == "" {
		return mcp.NewToolResultError("invalid node: componentName is required"), nil
	}

	return s.edit(ctx, req, func(p *page.Page) (any, error) {
		parent := p.Node(parentID)
		if parent == nil {
			return nil, fmt.Errorf("node %s not found", parentID)
		}
		n := parent.InsertAt(&data, req.GetInt("index", parent.ChildCount()))
		if n == nil {
			return nil, fmt.Errorf("%s cannot hold %s", parentID, data.ComponentName)
		}
		return n.ToData(), nil
	})
}

func (s *Server) handleMoveNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	parentID, err := req.RequireString("parent_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.editNode(ctx, req, func(p *page.Page, n *node.Node) (any, error) {
		target := p.Node(parentID)
		if target == nil {
			return nil, fmt.Errorf("node %s not found", parentID)
		}
		if target.InsertAt(n, req.GetInt("index", target.ChildCount())) == nil {
			return nil, fmt.Errorf("cannot move %s into %s", n.ID(), parentID)
		}
		return p.ToData(), nil
	})
}

func (s *Server) handleSetProp(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("value")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		// Bare words are taken as strings.
		value = raw
	}
	return s.editNode(ctx, req, func(_ *page.Page, n *node.Node) (any, error) {
		if !n.SetPropValue(path, value) {
			return nil, fmt.Errorf("prop %s of %s cannot be set", path, n.ID())
		}
		return n.ToData(), nil
	})
}

func (s *Server) handleRemoveNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.editNode(ctx, req, func(p *page.Page, n *node.Node) (any, error) {
		if err := n.Remove(); err != nil {
			return nil, err
		}
		return p.ToData(), nil
	})
}

func (s *Server) historyHandler(move func(*history.History)) handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.edit(ctx, req, func(p *page.Page) (any, error) {
			h := p.History()
			move(h)
			return map[string]any{"cursor": h.Cursor(), "modified": h.IsModified()}, nil
		})
	}
}

func (s *Server) handleSavePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("page_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.editor.Save(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("save failed: %v", err)), nil
	}
	return mcp.NewToolResultText("saved " + id), nil
}

func (s *Server) handleValidatePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("page_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.editor.Open(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.editor.Validate(id); err != nil {
		return mcp.NewToolResultText(err.Error()), nil
	}
	return mcp.NewToolResultText("valid"), nil
}

// edit opens the page named by page_id and runs fn under the editor lock.
// Errors from fn become tool errors.
func (s *Server) edit(ctx context.Context, req mcp.CallToolRequest, fn func(*page.Page) (any, error)) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("page_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.editor.Open(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var out any
	err = s.editor.Do(func(ed *pagecraft.Editor) error {
		p, err := ed.Pages().PageByID(id)
		if err != nil {
			return err
		}
		out, err = fn(p)
		return err
	})
	if err != nil {
		s.log.Debug("MCP tool rejected", "tool", req.Params.Name, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(out)
}

func (s *Server) editNode(ctx context.Context, req mcp.CallToolRequest, fn func(*page.Page, *node.Node) (any, error)) (*mcp.CallToolResult, error) {
	nodeID, err := req.RequireString("node_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.edit(ctx, req, func(p *page.Page) (any, error) {
		n := p.Node(nodeID)
		if n == nil {
			return nil, fmt.Errorf("node %s not found", nodeID)
		}
		return fn(p, n)
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
