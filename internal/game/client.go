// Package game wraps the 2048 chain application's GraphQL surface in typed
// operations. All game rules (move legality, scoring, win/lose
// determination) run on the chain; this package only ships snapshots and
// operations across the wire.
package game

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lpaydat/game2048-cli/internal/linera"
)

const getGameStateQuery = `query GetGameState($gameId: Int!) {
  game(gameId: $gameId) {
    gameId
    board
    score
    isEnded
  }
}`

const newGameMutation = `mutation NewGame($seed: Int!) {
  newGame(seed: $seed)
}`

const makeMoveMutation = `mutation MakeMove($gameId: ID!, $direction: String!) {
  makeMove(gameId: $gameId, direction: $direction)
}`

const endGameMutation = `mutation EndGame($gameId: Int!) {
  endGame(gameId: $gameId)
}`

// MaxGameID bounds client-generated game identifiers (inclusive).
const MaxGameID = 65536

// Client issues game operations against one chain application.
type Client struct {
	node *linera.Client
}

// NewClient wraps a node client bound to the 2048 application.
func NewClient(node *linera.Client) *Client {
	return &Client{node: node}
}

// GetGameState fetches the current snapshot for a game. Returns nil state
// (no error) when the game does not exist yet.
func (c *Client) GetGameState(ctx context.Context, gameID int) (*State, error) {
	resp, err := c.node.Query(ctx, &linera.Request{
		OperationName: "GetGameState",
		Variables:     map[string]any{"gameId": gameID},
		Query:         getGameStateQuery,
	})
	if err != nil {
		return nil, err
	}
	if resp.HasError() {
		return nil, resp.FirstError()
	}

	var data struct {
		Game *State `json:"game"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("game: parse state: %w", err)
	}
	return data.Game, nil
}

// NewGame starts a game seeded (and identified) by the given value.
func (c *Client) NewGame(ctx context.Context, seed int) error {
	if seed < 1 || seed > MaxGameID {
		return fmt.Errorf("game: seed %d out of range [1, %d]", seed, MaxGameID)
	}
	resp, err := c.node.Query(ctx, &linera.Request{
		OperationName: "NewGame",
		Variables:     map[string]any{"seed": seed},
		Query:         newGameMutation,
	})
	if err != nil {
		return err
	}
	if resp.HasError() {
		return resp.FirstError()
	}
	return nil
}

// MakeMove submits a move for the given game. The chain decides whether the
// move does anything; an ended game ignores it server-side.
func (c *Client) MakeMove(ctx context.Context, gameID int, direction Direction) error {
	resp, err := c.node.Query(ctx, &linera.Request{
		OperationName: "MakeMove",
		Variables:     map[string]any{"gameId": gameID, "direction": string(direction)},
		Query:         makeMoveMutation,
	})
	if err != nil {
		return err
	}
	if resp.HasError() {
		return resp.FirstError()
	}
	return nil
}

// EndGame marks a game as ended without finishing it on the board.
func (c *Client) EndGame(ctx context.Context, gameID int) error {
	resp, err := c.node.Query(ctx, &linera.Request{
		OperationName: "EndGame",
		Variables:     map[string]any{"gameId": gameID},
		Query:         endGameMutation,
	})
	if err != nil {
		return err
	}
	if resp.HasError() {
		return resp.FirstError()
	}
	return nil
}
