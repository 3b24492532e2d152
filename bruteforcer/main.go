// Command bruteforcer plays a whole RoboRally game against a running server.
// Every round it searches all ordered card selections of each robot's hand
// for the program that gets closest to the next checkpoint, submits the
// programs, runs the activation phase and answers LEFT_OR_RIGHT cards with
// the choices the search assumed.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/roborally/game/engine"
	"github.com/wricardo/mcp-training/roborally/game/service"
)

// Client talks to the game REST API for one session
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, bytes.TrimSpace(data))
	}
	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + suffix
}

// CreateSession starts a new game and remembers its ID
func (c *Client) CreateSession(ctx context.Context, boardID string, players int) (*service.SessionInfo, error) {
	var info service.SessionInfo
	req := service.CreateSessionRequest{BoardID: boardID, PlayerCount: players}
	if err := c.do(ctx, http.MethodPost, "/api/sessions", req, &info); err != nil {
		return nil, err
	}
	c.sessionID = info.ID
	return &info, nil
}

// GetSession loads the current session, including its board layout
func (c *Client) GetSession(ctx context.Context) (*service.SessionInfo, error) {
	var info service.SessionInfo
	if err := c.do(ctx, http.MethodGet, c.sessionPath(""), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) command(ctx context.Context, suffix string, body interface{}) (*service.CommandResult, error) {
	var result service.CommandResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath(suffix), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Program(ctx context.Context, robot int, slots []int) (*service.CommandResult, error) {
	return c.command(ctx, "/program", service.ProgramRequest{Robot: robot, HandSlots: slots})
}

func (c *Client) FinishProgramming(ctx context.Context) (*service.CommandResult, error) {
	return c.command(ctx, "/programming/finish", nil)
}

func (c *Client) Run(ctx context.Context) (*service.CommandResult, error) {
	return c.command(ctx, "/run", nil)
}

func (c *Client) Choose(ctx context.Context, command engine.Command) (*service.CommandResult, error) {
	return c.command(ctx, "/interactive", map[string]interface{}{"command": command.String(), "resume": true})
}

// Player drives one session round by round
type Player struct {
	client   *Client
	strategy *Strategy
	choices  map[int][]engine.Command
}

// PlayRound programs every robot, runs the activation phase and returns the
// state afterwards
func (p *Player) PlayRound(ctx context.Context, state *engine.BoardState) (*engine.BoardState, error) {
	p.choices = make(map[int][]engine.Command)

	for _, robot := range state.Robots {
		plan := p.strategy.BestProgram(robot)
		if len(plan.HandSlots) == 0 {
			log.Debug().Str("robot", robot.Name).Msg("no improving program, robot waits")
			continue
		}
		if _, err := p.client.Program(ctx, robot.Index, plan.HandSlots); err != nil {
			return nil, fmt.Errorf("program %s: %w", robot.Name, err)
		}
		p.choices[robot.Index] = plan.Choices
		log.Debug().Str("robot", robot.Name).Ints("slots", plan.HandSlots).Int("score", plan.Score).Msg("robot programmed")
	}

	if _, err := p.client.FinishProgramming(ctx); err != nil {
		return nil, err
	}
	result, err := p.client.Run(ctx)
	if err != nil {
		return nil, err
	}

	for result.State.Phase == engine.PlayerInteraction {
		robot := result.State.CurrentRobot
		choice := engine.Left
		if pending := p.choices[robot]; len(pending) > 0 {
			choice, p.choices[robot] = pending[0], pending[1:]
		}
		log.Debug().Int("robot", robot).Stringer("choice", choice).Msg("answering interactive card")
		if result, err = p.client.Choose(ctx, choice); err != nil {
			return nil, err
		}
	}

	return result.State, nil
}

// Play runs rounds until a robot wins or maxRounds is reached. It returns
// the final state.
func Play(ctx context.Context, client *Client, maxRounds int) (*engine.BoardState, int, error) {
	info, err := client.GetSession(ctx)
	if err != nil {
		return nil, 0, err
	}
	if info.Board == nil {
		return nil, 0, fmt.Errorf("session %s has no board layout", info.ID)
	}

	strategy, err := NewStrategy(info.Board)
	if err != nil {
		return nil, 0, err
	}
	player := &Player{client: client, strategy: strategy}

	state := info.State
	for round := 1; round <= maxRounds; round++ {
		if state.Phase == engine.Finished {
			return state, round - 1, nil
		}
		if state.Phase != engine.Programming {
			return state, round - 1, fmt.Errorf("session is in phase %s, expected %s", state.Phase, engine.Programming)
		}

		if state, err = player.PlayRound(ctx, state); err != nil {
			return nil, round, err
		}
		for _, robot := range state.Robots {
			log.Info().Int("round", round).Str("robot", robot.Name).
				Int("x", robot.X).Int("y", robot.Y).Stringer("heading", robot.Heading).
				Int("checkpoints", robot.CheckpointsReached).Msg("round finished")
		}
		if state.Phase == engine.Finished {
			return state, round, nil
		}
	}
	return state, maxRounds, nil
}

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).With().Timestamp().Logger()

	cmd := &cli.Command{
		Name:  "bruteforcer",
		Usage: "Play a RoboRally game with searched programs",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL"},
			&cli.StringFlag{Name: "board", Usage: "Board layout for a new session"},
			&cli.IntFlag{Name: "players", Value: engine.MinRobots, Usage: "Number of robots in a new session"},
			&cli.StringFlag{Name: "continue", Usage: "Resume playing an existing session by ID"},
			&cli.IntFlag{Name: "max-rounds", Value: 50, Usage: "Maximum rounds before giving up"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("v") {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}

			client := NewClient(cmd.String("url"))
			if id := cmd.String("continue"); id != "" {
				client.sessionID = id
				log.Info().Str("session", id).Msg("🔄 resuming session")
			} else {
				info, err := client.CreateSession(ctx, cmd.String("board"), cmd.Int("players"))
				if err != nil {
					return err
				}
				log.Info().Str("session", info.ID).Str("board", info.BoardID).Msg("✨ session created")
			}

			state, rounds, err := Play(ctx, client, cmd.Int("max-rounds"))
			if err != nil {
				return err
			}
			if state.Winner != nil {
				log.Info().Str("winner", state.Robots[*state.Winner].Name).Int("rounds", rounds).Int("moves", state.MoveCounter).Msg("🏆 game won")
				return nil
			}
			return fmt.Errorf("no winner after %d rounds", rounds)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("bruteforcer failed")
	}
}
