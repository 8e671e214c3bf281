package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	rivalsnet "github.com/peterkuimelis/momentrivals/internal/net"
	"github.com/peterkuimelis/momentrivals/internal/replay"
)

// RegisterTools adds all game tools to the MCP server.
func RegisterTools(s *server.MCPServer, m *Manager) {
	s.AddTool(startMatchTool(), m.handleStartMatch)
	s.AddTool(cardTool("select_card", "Add a hand card to the play being built. Select a main card (OFFENSE or DEFENSE) first, then optionally one SUPPORT card. Selecting a selected card deselects it."), m.cardHandler("select"))
	s.AddTool(cardTool("deselect_card", "Remove a card from the play being built."), m.cardHandler("deselect"))
	s.AddTool(cardTool("cycle_card", "Discard a hand card and draw a replacement. Costs energy and is allowed once per turn."), m.cardHandler("cycle"))
	s.AddTool(simpleTool("play_card", "Lock in the selected play. The AI then locks its play and both are revealed, unless the turn is deferred."), m.commandHandler("play"))
	s.AddTool(simpleTool("pass", "Lock in a pass for this turn. Passing with a full hand discards the oldest card."), m.commandHandler("pass"))
	s.AddTool(simpleTool("draw", "Start the next round. Use this when state.waiting_for_draw is true."), m.commandHandler("draw"))
	s.AddTool(simpleTool("forfeit", "Concede the match. The AI wins."), m.commandHandler("forfeit"))
	s.AddTool(simpleTool("get_state", "Get the current state and the events logged since the last call without acting. Read-only."), m.handleGetState)
	s.AddTool(exportReplayTool(), m.handleExportReplay)
}

// --- Tool definitions ---

func startMatchTool() mcp.Tool {
	return mcp.NewTool("start_match",
		mcp.WithDescription("Start a Moment Rivals match against the AI opponent. You play the human side. "+
			"Each turn, build a play with select_card and lock it with play_card, or pass. "+
			"Returns the opening state; hand cards are numbered from 1."),
		mcp.WithNumber("deck", mcp.Description("Deck number from the decks file (1-indexed, default 1)")),
		mcp.WithString("difficulty", mcp.Description("AI difficulty: baseline, easy, medium or hard (default from config)")),
		mcp.WithNumber("seed", mcp.Description("Random seed for a reproducible match (default: random)")),
	)
}

func cardTool(name, desc string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription(desc),
		mcp.WithString("card", mcp.Required(), mcp.Description("1-based hand index or card ID")),
	)
}

func simpleTool(name, desc string) mcp.Tool {
	return mcp.NewTool(name, mcp.WithDescription(desc))
}

func exportReplayTool() mcp.Tool {
	return mcp.NewTool("export_replay",
		mcp.WithDescription("Export the current match as a replay JSON document. "+
			"With a directory, the replay is written there and the file path is returned."),
		mcp.WithString("dir", mcp.Description("Directory to write the replay file to (optional)")),
	)
}

// --- Tool handlers ---

func (m *Manager) handleStartMatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deck := request.GetInt("deck", 1)
	if deck < 1 {
		return mcp.NewToolResultError("deck must be >= 1"), nil
	}
	seed := int64(request.GetInt("seed", 0))

	resp, err := m.Start(deck, request.GetString("difficulty", ""), seed)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start match: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (m *Manager) cardHandler(command string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		card := strings.TrimSpace(request.GetString("card", ""))
		if card == "" {
			return mcp.NewToolResultError("card is required"), nil
		}
		msg, err := rivalsnet.ParseCommand(command + " " + card)
		if err != nil {
			return mcp.NewToolResultErrorf("Invalid card %q: %v", card, err), nil
		}
		return m.run(msg)
	}
}

func (m *Manager) commandHandler(command string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return m.run(rivalsnet.ClientMessage{Type: command})
	}
}

func (m *Manager) run(msg rivalsnet.ClientMessage) (*mcp.CallToolResult, error) {
	ctrl, err := m.Active()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(respondJSON(ctrl.Command(msg))), nil
}

func (m *Manager) handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctrl, err := m.Active()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(respondJSON(ctrl.Respond(nil))), nil
}

func (m *Manager) handleExportReplay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctrl, err := m.Active()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	r := ctrl.Replay()
	data, err := replay.Marshal(r)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to export replay: %v", err), nil
	}

	dir := request.GetString("dir", "")
	if dir == "" {
		return mcp.NewToolResultText(string(data)), nil
	}
	path := filepath.Join(dir, replay.Filename(r.MatchID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return mcp.NewToolResultErrorf("Failed to write replay: %v", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Replay written to %s", path)), nil
}
