// Package mcp exposes a story library to AI agents over the Model Context Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/quire"
	"github.com/aretw0/quire/internal/logging"
	"github.com/aretw0/quire/internal/presentation/graph"
	"github.com/aretw0/quire/pkg/domain"
	"github.com/aretw0/quire/pkg/links"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const storiesURI = "quire://stories"

// Library is the part of quire.Library the MCP server reads.
type Library interface {
	Stories() []*domain.Story
	Story(id string) (*domain.Story, error)
	StoryByName(name string) (*domain.Story, error)
	Stats(storyID string) (links.Stats, error)
	Links(storyID string) (*links.Graph, error)
	Publish(ctx context.Context, storyID string) (string, error)
	Test(ctx context.Context, storyID, startPassageID string) (string, error)
	Proof(ctx context.Context, storyID string) (string, error)
}

var _ Library = (*quire.Library)(nil)

// StoryRef selects a story by id or, failing that, by name.
type StoryRef struct {
	StoryID   string `json:"story_id,omitempty" jsonschema_description:"Story id"`
	StoryName string `json:"story_name,omitempty" jsonschema_description:"Story name, used when story_id is empty"`
}

// PublishArgs are the arguments of publish_story.
type PublishArgs struct {
	StoryRef
	Mode  string `json:"mode,omitempty" jsonschema_description:"publish, test or proof"`
	Start string `json:"start,omitempty" jsonschema_description:"Passage id to start from in test mode"`
}

// StorySummary is one entry of list_stories.
type StorySummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Format   string `json:"format"`
	Passages int    `json:"passages"`
}

// StoryList is the result of list_stories.
type StoryList struct {
	Stories []StorySummary `json:"stories" jsonschema_description:"Every story in the library"`
}

// LinkList is the result of story_links.
type LinkList struct {
	Links []LinkView `json:"links"`
}

// LinkView is one link of a story.
type LinkView struct {
	From   string `json:"from" jsonschema_description:"Source passage name"`
	Target string `json:"target" jsonschema_description:"Link target as written"`
	Kind   string `json:"kind" jsonschema_description:"ordinary, self or broken"`
}

// Server wraps the library and exposes it as an MCP Server.
type Server struct {
	lib       Library
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(lib Library, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		lib:       lib,
		logger:    logger,
		mcpServer: server.NewMCPServer("quire-mcp", version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
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

func (s *Server) registerTools() {
	storyParams := []mcp.ToolOption{
		mcp.WithString("story_id", mcp.Description("Story id")),
		mcp.WithString("story_name", mcp.Description("Story name, used when story_id is empty")),
	}

	s.mcpServer.AddTool(mcp.NewTool("list_stories",
		mcp.WithDescription("List the stories in the library."),
		mcp.WithOutputSchema[StoryList](),
	), mcp.NewStructuredToolHandler(s.handleListStories))

	s.mcpServer.AddTool(mcp.NewTool("story_stats",
		append([]mcp.ToolOption{
			mcp.WithDescription("Count characters, words, passages, links and broken links of a story."),
			mcp.WithOutputSchema[links.Stats](),
		}, storyParams...)...,
	), mcp.NewStructuredToolHandler(s.handleStats))

	s.mcpServer.AddTool(mcp.NewTool("story_links",
		append([]mcp.ToolOption{
			mcp.WithDescription("List every link of a story, classified as ordinary, self or broken."),
			mcp.WithOutputSchema[LinkList](),
		}, storyParams...)...,
	), mcp.NewStructuredToolHandler(s.handleLinks))

	s.mcpServer.AddTool(mcp.NewTool("story_graph",
		append([]mcp.ToolOption{
			mcp.WithDescription("Render the passage map of a story as a Mermaid flowchart."),
		}, storyParams...)...,
	), mcp.NewTypedToolHandler(s.handleGraph))

	s.mcpServer.AddTool(mcp.NewTool("publish_story",
		append([]mcp.ToolOption{
			mcp.WithDescription("Publish a story to HTML with its story format."),
			mcp.WithString("mode", mcp.Enum("publish", "test", "proof"), mcp.Description("publish (default), test or proof")),
			mcp.WithString("start", mcp.Description("Passage id to start from in test mode")),
		}, storyParams...)...,
	), mcp.NewTypedToolHandler(s.handlePublish))
}

func (s *Server) story(ref StoryRef) (*domain.Story, error) {
	switch {
	case ref.StoryID != "":
		return s.lib.Story(ref.StoryID)
	case ref.StoryName != "":
		return s.lib.StoryByName(ref.StoryName)
	}
	return nil, fmt.Errorf("story_id or story_name is required")
}

func (s *Server) handleListStories(ctx context.Context, request mcp.CallToolRequest, args struct{}) (StoryList, error) {
	list := StoryList{Stories: []StorySummary{}}
	for _, st := range s.lib.Stories() {
		list.Stories = append(list.Stories, StorySummary{
			ID:       st.ID,
			Name:     st.Name,
			Format:   st.Format().String(),
			Passages: len(st.Passages),
		})
	}
	return list, nil
}

func (s *Server) handleStats(ctx context.Context, request mcp.CallToolRequest, args StoryRef) (links.Stats, error) {
	st, err := s.story(args)
	if err != nil {
		return links.Stats{}, err
	}
	return s.lib.Stats(st.ID)
}

func (s *Server) handleLinks(ctx context.Context, request mcp.CallToolRequest, args StoryRef) (LinkList, error) {
	st, err := s.story(args)
	if err != nil {
		return LinkList{}, err
	}
	g, err := s.lib.Links(st.ID)
	if err != nil {
		return LinkList{}, err
	}
	out := LinkList{Links: []LinkView{}}
	for _, l := range g.Links {
		out.Links = append(out.Links, LinkView{From: l.From.Name, Target: l.Target, Kind: string(l.Kind)})
	}
	return out, nil
}

func (s *Server) handleGraph(ctx context.Context, request mcp.CallToolRequest, args StoryRef) (*mcp.CallToolResult, error) {
	st, err := s.story(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(st)), nil
}

func (s *Server) handlePublish(ctx context.Context, request mcp.CallToolRequest, args PublishArgs) (*mcp.CallToolResult, error) {
	st, err := s.story(args.StoryRef)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var page string
	switch args.Mode {
	case "", "publish":
		page, err = s.lib.Publish(ctx, st.ID)
	case "test":
		page, err = s.lib.Test(ctx, st.ID, args.Start)
	case "proof":
		page, err = s.lib.Proof(ctx, st.ID)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown mode %q", args.Mode)), nil
	}
	if err != nil {
		s.logger.Warn("MCP publish failed", "story_id", st.ID, "mode", args.Mode, "err", err)
		return mcp.NewToolResultError(fmt.Sprintf("publish failed: %v", err)), nil
	}
	return mcp.NewToolResultText(page), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(storiesURI, "Story Library",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.lib.Stories())
		if err != nil {
			return nil, fmt.Errorf("failed to encode stories: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      storiesURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
