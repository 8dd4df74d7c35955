// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Reconnect tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/reconnect/internal/apperr"
	"github.com/starford/reconnect/internal/contactservice"
	"github.com/starford/reconnect/internal/models"
)

const scoringURI = "reconnect://scoring"

// Server wraps the MCP server with Reconnect tools.
type Server struct {
	mcp *server.MCPServer
	svc *contactservice.Service
}

// New creates a new MCP server with all Reconnect tools registered.
func New(svc *contactservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Reconnect",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("suggest_contacts",
		mcp.WithDescription("Return the contacts most overdue for outreach, most urgent first. "+
			"See the reconnect://scoring resource for how contacts are ranked."),
		mcp.WithString("mode", mcp.Description("daily or weekly; defaults to the configured mode"), mcp.Enum("daily", "weekly")),
		mcp.WithNumber("count", mcp.Description("Number of contacts; defaults to the configured count for the mode")),
	), s.suggestContacts)

	s.mcp.AddTool(mcp.NewTool("explain_ranking",
		mcp.WithDescription("Score every contact and show days since last contact, overdue ratio, score and whether it is due."),
	), s.explainRanking)

	s.mcp.AddTool(mcp.NewTool("list_contacts",
		mcp.WithDescription("List all contacts ordered by name."),
	), s.listContacts)

	s.mcp.AddTool(mcp.NewTool("record_interaction",
		mcp.WithDescription("Record a call or text with a contact. This updates the contact's last contacted time."),
		mcp.WithString("contact_id", mcp.Required(), mcp.Description("ID of the contact")),
		mcp.WithString("type", mcp.Required(), mcp.Description("Interaction type"), mcp.Enum("call", "text")),
		mcp.WithString("message", mcp.Description("Text message content; kept for texts only, truncated to 140 characters")),
		mcp.WithString("notes", mcp.Description("Free-form notes")),
	), s.recordInteraction)

	s.mcp.AddTool(mcp.NewTool("list_interactions",
		mcp.WithDescription("List recorded interactions, newest first."),
		mcp.WithString("contact_id", mcp.Description("Only interactions with this contact")),
		mcp.WithNumber("limit", mcp.Description("Max results (0 for all)")),
	), s.listInteractions)

	s.mcp.AddTool(mcp.NewTool("get_settings",
		mcp.WithDescription("Return the suggestion settings (mode, counts, default frequencies)."),
	), s.getSettings)

	// Resource: scoring rules.
	s.mcp.AddResource(
		mcp.NewResource(scoringURI, "Scoring Rules",
			mcp.WithResourceDescription("How Reconnect ranks contacts that are overdue for outreach."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readScoringResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(out)), nil
}

// errorResult reports domain errors to the model; internal details are masked.
func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(string(apperr.KindOf(err)) + ": " + apperr.Message(err))
}

// optionalInt returns a pointer to the integer argument name, or nil when
// the argument was not supplied.
func optionalInt(req mcp.CallToolRequest, name string) (*int, error) {
	raw, ok := req.GetArguments()[name]
	if !ok || raw == nil {
		return nil, nil
	}
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	default:
		return nil, apperr.Invalid("%s: must be a number", name)
	}
	if f != math.Trunc(f) {
		return nil, apperr.Invalid("%s: must be an integer", name)
	}
	n := int(f)
	return &n, nil
}

func (s *Server) suggestContacts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	count, err := optionalInt(req, "count")
	if err != nil {
		return errorResult(err), nil
	}
	contacts, err := s.svc.Suggestions(ctx, req.GetString("mode", ""), count)
	if err != nil {
		return errorResult(err), nil
	}
	if len(contacts) == 0 {
		return mcp.NewToolResultText("no contacts"), nil
	}
	return jsonResult(contacts)
}

type rankingRow struct {
	ID            string   `json:"id"`
	FullName      string   `json:"fullName"`
	Priority      int      `json:"priority"`
	FrequencyDays int      `json:"frequencyDays"`
	DaysSince     *float64 `json:"daysSince"`
	OverdueRatio  *float64 `json:"overdueRatio"`
	Score         *float64 `json:"score"`
	Never         bool     `json:"neverContacted"`
	Due           bool     `json:"due"`
}

func (s *Server) explainRanking(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ranked, err := s.svc.Ranking(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	rows := make([]rankingRow, len(ranked))
	for i, r := range ranked {
		row := rankingRow{
			ID:            r.Contact.ID,
			FullName:      r.Contact.FullName,
			Priority:      r.Contact.Priority,
			FrequencyDays: r.Contact.FrequencyDays,
			Never:         r.Never(),
			Due:           r.Due,
		}
		// JSON has no infinity; never-contacted rows leave the numbers null.
		if !row.Never {
			row.DaysSince = &r.DaysSince
			row.OverdueRatio = &r.OverdueRatio
			row.Score = &r.Score
		}
		rows[i] = row
	}
	return jsonResult(rows)
}

func (s *Server) listContacts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contacts, err := s.svc.ListContacts(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(contacts)
}

func (s *Server) recordInteraction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contactID, err := req.RequireString("contact_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	typ, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	it, err := s.svc.RecordInteraction(ctx, contactID, models.InteractionInput{
		Type:           models.InteractionType(strings.ToLower(typ)),
		MessagePreview: req.GetString("message", ""),
		Notes:          req.GetString("notes", ""),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(it)
}

func (s *Server) listInteractions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, err := optionalInt(req, "limit")
	if err != nil {
		return errorResult(err), nil
	}
	f := models.InteractionFilter{ContactID: req.GetString("contact_id", "")}
	if limit != nil {
		f.Limit = *limit
	}
	items, err := s.svc.ListInteractions(ctx, f)
	if err != nil {
		return errorResult(err), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no interactions found"), nil
	}
	return jsonResult(items)
}

func (s *Server) getSettings(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cur, _ := s.svc.Settings()
	return jsonResult(cur)
}

func (s *Server) readScoringResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      scoringURI,
			MIMEType: "text/markdown",
			Text:     ScoringRules,
		},
	}, nil
}
