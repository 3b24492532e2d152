package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/roborally/game/engine"
	"github.com/wricardo/mcp-training/roborally/game/service"
)

// Client is a thin MCP server that proxies every tool call to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API at baseURL
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"RoboRally",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(`RoboRally - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Program your robot with command cards and be the first to touch every
checkpoint in order. The robot that reaches the final checkpoint wins.

A ROUND:
1. start_programming deals 8 cards to every robot
2. program_robot (or move_cards) puts cards into the 5 registers
3. finish_programming locks the programs
4. execute_step / execute_programs runs register by register, robot by robot
5. choose_command answers LEFT_OR_RIGHT cards when the game waits

Call game_instructions for the complete rules and board_state to see the board.`),
	)

	c.registerTools()
}

func sessionParam() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID"))
}

func robotParam() mcp.ToolOption {
	return mcp.WithNumber("robot", mcp.Required(), mcp.Min(0), mcp.Description("Robot index (0-based, in board order)"))
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Create a new game session on a board layout"),
		mcp.WithString("board_id", mcp.Description("Board layout to use (see list_boards); defaults to the server's default board")),
		mcp.WithNumber("player_count", mcp.Min(engine.MinRobots), mcp.Max(engine.MaxRobots), mcp.Description("Number of robots when no player names are given")),
		mcp.WithArray("player_names", mcp.WithStringItems(), mcp.Description("Names of the players, one robot each")),
		mcp.WithNumber("seed", mcp.Min(0), mcp.Description("Seed for a reproducible card deck")),
	), c.handleCreateSession)

	c.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List all active game sessions"),
	), c.handleListSessions)

	c.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Get details of a specific session"),
		sessionParam(),
	), c.handleGetSession)

	c.mcpServer.AddTool(mcp.NewTool("board_state",
		mcp.WithDescription("Show the board, every robot's position and heading, programs and hands"),
		sessionParam(),
	), c.handleBoardState)

	// Programming
	c.mcpServer.AddTool(mcp.NewTool("start_programming",
		mcp.WithDescription("Clear all programs and deal a fresh hand of cards to every robot"),
		sessionParam(),
	), c.handleStartProgramming)

	c.mcpServer.AddTool(mcp.NewTool("program_robot",
		mcp.WithDescription("Fill a robot's registers from its hand: hand_slots[i] is the hand slot whose card goes into register i"),
		sessionParam(),
		robotParam(),
		mcp.WithArray("hand_slots", mcp.Required(), mcp.WithNumberItems(mcp.Min(0), mcp.Max(engine.NoCards-1)),
			mcp.MinItems(1), mcp.MaxItems(engine.NoRegisters), mcp.Description("Hand slots (0-7) in register order")),
		mcp.WithString("intent", mcp.Description("Brief explanation of the plan behind this program")),
	), c.handleProgramRobot)

	c.mcpServer.AddTool(mcp.NewTool("move_cards",
		mcp.WithDescription("Move one card between a robot's hand and program fields. The source must hold a card and the target must be empty."),
		sessionParam(),
		robotParam(),
		mcp.WithString("from_kind", mcp.Required(), mcp.Enum(string(engine.HandField), string(engine.ProgramField))),
		mcp.WithNumber("from_index", mcp.Required(), mcp.Min(0)),
		mcp.WithString("to_kind", mcp.Required(), mcp.Enum(string(engine.HandField), string(engine.ProgramField))),
		mcp.WithNumber("to_index", mcp.Required(), mcp.Min(0)),
	), c.handleMoveCards)

	c.mcpServer.AddTool(mcp.NewTool("finish_programming",
		mcp.WithDescription("Lock all programs and start the activation phase"),
		sessionParam(),
	), c.handleFinishProgramming)

	// Activation
	c.mcpServer.AddTool(mcp.NewTool("execute_step",
		mcp.WithDescription("Execute the current robot's card in the current register"),
		sessionParam(),
	), c.handleExecuteStep)

	c.mcpServer.AddTool(mcp.NewTool("execute_programs",
		mcp.WithDescription("Execute cards until the round ends, the game is won or a robot waits for a choice"),
		sessionParam(),
	), c.handleExecutePrograms)

	c.mcpServer.AddTool(mcp.NewTool("choose_command",
		mcp.WithDescription("Answer a pending LEFT_OR_RIGHT card"),
		sessionParam(),
		mcp.WithString("command", mcp.Required(), mcp.Enum(engine.Left.String(), engine.Right.String())),
		mcp.WithBoolean("resume", mcp.Description("Keep executing the remaining registers afterwards")),
	), c.handleChooseCommand)

	// Free play
	c.mcpServer.AddTool(mcp.NewTool("robot_action",
		mcp.WithDescription("Move or turn a robot directly, outside program execution (programming phase only). 'place' moves the current robot to x,y and passes the turn."),
		sessionParam(),
		robotParam(),
		mcp.WithString("action", mcp.Required(), mcp.Enum(service.RobotActions...)),
		mcp.WithNumber("x", mcp.Description("Target column for place")),
		mcp.WithNumber("y", mcp.Description("Target row for place")),
	), c.handleRobotAction)

	// Boards
	c.mcpServer.AddTool(mcp.NewTool("list_boards",
		mcp.WithDescription("List available board layouts"),
	), c.handleListBoards)

	c.mcpServer.AddTool(mcp.NewTool("game_instructions",
		mcp.WithDescription("Get comprehensive game instructions and rules"),
	), c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// ServeHTTP answers single JSON-RPC messages posted to the /mcp endpoint
func (c *Client) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	response := c.mcpServer.HandleMessage(r.Context(), body)
	if response == nil {
		// Notifications have no response
		w.WriteHeader(http.StatusAccepted)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().Err(err).Msg("failed to encode MCP response")
	}
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// command posts to a round endpoint and formats the result
func (c *Client) command(ctx context.Context, request mcp.CallToolRequest, suffix string, body interface{}) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.CommandResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, suffix), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatCommandResult(&result)), nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := service.CreateSessionRequest{
		BoardID:     request.GetString("board_id", ""),
		PlayerCount: request.GetInt("player_count", 0),
	}
	for _, name := range request.GetStringSlice("player_names", nil) {
		req.Players = append(req.Players, engine.PlayerConfig{Name: name})
	}
	if seed := request.GetInt("seed", -1); seed >= 0 {
		s := uint64(seed)
		req.Seed = &s
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", req, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nBoard: %s\n\n%s", info.ID, info.BoardID, formatBoardState(info.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		phase := "?"
		if s.State != nil {
			phase = s.State.Phase.String()
		}
		fmt.Fprintf(&sb, "- %s (Board: %s, Phase: %s, Created: %s)\n",
			s.ID, s.BoardID, phase, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handleBoardState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.BoardState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBoardState(&state)), nil
}

func (c *Client) handleStartProgramming(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.command(ctx, request, "/programming/start", nil)
}

func (c *Client) handleFinishProgramming(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.command(ctx, request, "/programming/finish", nil)
}

func (c *Client) handleExecuteStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.command(ctx, request, "/step", nil)
}

func (c *Client) handleExecutePrograms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.command(ctx, request, "/run", nil)
}

func (c *Client) handleProgramRobot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	robot, err := request.RequireInt("robot")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	slots, err := request.RequireIntSlice("hand_slots")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return c.command(ctx, request, "/program", service.ProgramRequest{Robot: robot, HandSlots: slots})
}

func (c *Client) handleMoveCards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	robot, err := request.RequireInt("robot")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	from, err := slotArg(request, "from")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := slotArg(request, "to")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return c.command(ctx, request, "/cards/move", service.MoveCardsRequest{Robot: robot, From: from, To: to})
}

func slotArg(request mcp.CallToolRequest, prefix string) (service.SlotRef, error) {
	kind, err := request.RequireString(prefix + "_kind")
	if err != nil {
		return service.SlotRef{}, err
	}
	index, err := request.RequireInt(prefix + "_index")
	if err != nil {
		return service.SlotRef{}, err
	}
	return service.SlotRef{Kind: engine.CardFieldKind(strings.ToLower(kind)), Index: index}, nil
}

func (c *Client) handleChooseCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	command, err := request.RequireString("command")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]interface{}{
		"command": command,
		"resume":  request.GetBool("resume", false),
	}
	return c.command(ctx, request, "/interactive", body)
}

func (c *Client) handleRobotAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	robot, err := request.RequireInt("robot")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	action, err := request.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := service.RobotActionRequest{
		Action: action,
		X:      request.GetInt("x", 0),
		Y:      request.GetInt("y", 0),
	}
	return c.command(ctx, request, fmt.Sprintf("/robots/%d/actions", robot), body)
}

func (c *Client) handleListBoards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var boards []service.BoardInfo
	if err := c.apiCall(ctx, "GET", "/api/boards", nil, &boards); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	sb.WriteString("Available Boards:\n\n")
	for _, b := range boards {
		source := b.Filename
		if b.Builtin {
			source = "built-in"
		}
		fmt.Fprintf(&sb, "• %s (%s)\n  %s\n  Grid: %dx%d, Checkpoints: %d, Conveyors: %d\n\n",
			b.BoardID, source, b.Description, b.Width, b.Height, b.Checkpoints, b.Conveyors)
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `RoboRally - Complete Instructions

GAME OBJECTIVE:
Race your robot across the factory floor and touch every checkpoint in
numerical order. The first robot to reach the final checkpoint wins.

THE BOARD:
• Coordinates are (x, y) with (0,0) in the top-left corner; y grows downwards
• Headings: NORTH is up, EAST is right, SOUTH is down, WEST is left
• Walls block movement across one side of a space
• Conveyor belts move the robot standing on them one space after every register
• Checkpoints (#1, #2, ...) count only when touched in order; #n! is the final one
• Robots never leave the board; a move off the edge does nothing

BOARD MAP (board_state):
  1v   robot 1 facing south (arrows ^ > v <)
  #2   checkpoint 2, #3! final checkpoint
   ^   conveyor belt and its direction
   .   empty space
   |   wall between two spaces in a row, --- wall between two rows

CARDS:
• FORWARD        move one space
• FAST_FORWARD   move two spaces, stopping early if blocked
• BACKWARDS      move one space back without turning
• LEFT / RIGHT   turn 90 degrees
• U_TURN         turn around
• LEFT_OR_RIGHT  the player chooses LEFT or RIGHT when the card runs

PUSHING:
A robot moving into an occupied space pushes the robot there (and any
robots behind it) one space. If any robot in the chain is blocked by a wall
or the edge, nobody moves.

A ROUND:
1. PROGRAMMING: every robot gets 8 cards (hand slots 0-7) and 5 empty
   registers (0-4). Use program_robot or move_cards to fill registers.
2. finish_programming locks the programs. Only register 0 is revealed.
3. ACTIVATION: for each register, robots run their card in board order.
   After the last robot, conveyors move and checkpoints are checked.
   execute_step runs one card, execute_programs runs until something stops.
4. PLAYER_INTERACTION: a LEFT_OR_RIGHT card waits for choose_command.
5. After register 4 a new programming phase starts automatically.
6. FINISHED: a robot reached the final checkpoint. The game is over.

FREE PLAY:
robot_action moves or turns a robot directly while programming. The action
'place' moves the current robot to any free space and passes the turn.

STRATEGY TIPS:
• Read the board with board_state before programming
• Count how far a FAST_FORWARD will take you near walls
• Conveyors act after every register, plan for the drift
• Empty registers are allowed; the robot just waits`

// Formatting helpers

func formatSessionInfo(info *service.SessionInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Session: %s\nBoard: %s\nCreated: %s\nLast access: %s\n",
		info.ID, info.BoardID, info.CreatedAt.Format(time.RFC3339), info.LastAccessedAt.Format(time.RFC3339))
	if info.Board != nil && info.Board.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", info.Board.Description)
	}
	sb.WriteString("\n")
	sb.WriteString(formatBoardState(info.State))
	return sb.String()
}

func formatBoardState(state *engine.BoardState) string {
	if state == nil {
		return "No state available\n"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%dx%d)\n%s\n\n", state.Name, state.Width, state.Height, state.Status)

	for _, line := range engine.RenderText(state) {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	for _, robot := range state.Robots {
		marker := " "
		if robot.Index == state.CurrentRobot {
			marker = "*"
		}
		position := "not placed"
		if robot.Placed {
			position = fmt.Sprintf("(%d,%d) facing %s", robot.X, robot.Y, robot.Heading)
		}
		fmt.Fprintf(&sb, "%s Robot %d %s [%s]: %s, checkpoints %d\n",
			marker, robot.Index, robot.Name, robot.Color, position, robot.CheckpointsReached)
		fmt.Fprintf(&sb, "    program: %s\n", formatCards(robot.Program))
		fmt.Fprintf(&sb, "    hand:    %s\n", formatCards(robot.Hand))
	}

	if state.Winner != nil && *state.Winner < len(state.Robots) {
		fmt.Fprintf(&sb, "\n🏆 Winner: %s\n", state.Robots[*state.Winner].Name)
	}
	if len(state.Options) > 0 {
		options := make([]string, len(state.Options))
		for i, o := range state.Options {
			options[i] = o.String()
		}
		fmt.Fprintf(&sb, "\n⏳ Waiting for choose_command: %s\n", strings.Join(options, " or "))
	}

	return sb.String()
}

func formatCards(cards []engine.CardState) string {
	parts := make([]string, len(cards))
	for i, card := range cards {
		switch {
		case card.Empty:
			parts[i] = fmt.Sprintf("%d:--", i)
		case card.Command == nil:
			parts[i] = fmt.Sprintf("%d:??", i)
		default:
			parts[i] = fmt.Sprintf("%d:%s", i, *card.Command)
		}
	}
	return strings.Join(parts, " ")
}

func formatCommandResult(result *service.CommandResult) string {
	var sb strings.Builder
	status := "✅"
	if !result.Success {
		status = "⚠️ no change"
	}
	fmt.Fprintf(&sb, "%s %s\n", status, result.Message)

	if len(result.Events) > 0 {
		sb.WriteString("\nEvents:\n")
		for _, e := range result.Events {
			fmt.Fprintf(&sb, "  • [%s] %s\n", e.Type, e.Message)
		}
	}

	sb.WriteString("\n")
	sb.WriteString(formatBoardState(result.State))
	return sb.String()
}
