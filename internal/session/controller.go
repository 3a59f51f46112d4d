// Package session owns the client-side lifecycle of one game view: which
// game is active, the last fetched snapshot, the block-observation log, and
// the translation of key presses into move mutations.
//
// All state changes are explicit methods driven by a single event loop
// goroutine, so move submissions are naturally serialized.
package session

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/lpaydat/game2048-cli/internal/game"
	"github.com/lpaydat/game2048-cli/internal/linera"
)

// GameAPI is the slice of the game client the controller drives.
type GameAPI interface {
	GetGameState(ctx context.Context, gameID int) (*game.State, error)
	NewGame(ctx context.Context, seed int) error
	MakeMove(ctx context.Context, gameID int, direction game.Direction) error
}

// Recorder persists finished games. Optional.
type Recorder interface {
	RecordGame(ctx context.Context, gameID int, score int64, won bool) error
}

// Event is one user action delivered to the controller loop.
type Event struct {
	// Key is a key name to translate into a move ("Up", "ArrowLeft", ...).
	Key string
	// NewGame requests a fresh game, allowed regardless of end state.
	NewGame bool
}

// Config configures a Controller.
type Config struct {
	// Game issues the GraphQL operations. Required.
	Game GameAPI

	// History records finished games. Optional.
	History Recorder

	// Logger receives dropped-input and refresh errors.
	// Defaults to slog.Default().
	Logger *slog.Logger

	// StartDelay is how long Run waits before creating the first game.
	// Defaults to 500ms.
	StartDelay time.Duration

	// RandInt picks a game identifier in [1, n]. Defaults to math/rand.
	RandInt func(n int) int

	// Now supplies log timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Controller is the game view state machine. gameID zero means
// uninitialized: no game has been created yet.
type Controller struct {
	api     GameAPI
	history Recorder
	logger  *slog.Logger

	startDelay time.Duration
	randInt    func(n int) int
	now        func() time.Time

	mu          sync.Mutex
	gameID      int
	state       *game.State
	log         moveLog
	lastHeight  uint64
	seenHeight  bool
	lastHash    string
	endRecorded bool

	// OnUpdate fires after every state or log change, with the latest
	// snapshot (nil before the first successful fetch) and the log copy.
	OnUpdate func(state *game.State, log []Entry)
}

// New builds a controller. It does not create a game; Run (or an explicit
// StartNewGame) does.
func New(cfg Config) *Controller {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.StartDelay == 0 {
		cfg.StartDelay = 500 * time.Millisecond
	}
	if cfg.RandInt == nil {
		cfg.RandInt = func(n int) int { return 1 + rand.Intn(n) }
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Controller{
		api:        cfg.Game,
		history:    cfg.History,
		logger:     cfg.Logger,
		startDelay: cfg.StartDelay,
		randInt:    cfg.RandInt,
		now:        cfg.Now,
	}
}

// GameID returns the active game identifier (0 = uninitialized).
func (c *Controller) GameID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gameID
}

// State returns the last fetched snapshot, or nil before the first fetch.
func (c *Controller) State() *game.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Log returns a copy of the block log, newest first.
func (c *Controller) Log() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.log.snapshot()
}

// StartNewGame resets the log, generates a random identifier in
// [1, game.MaxGameID], creates the game with that identifier as seed, adopts
// it, and fetches the initial state. Allowed at any time, including after
// the current game has ended.
func (c *Controller) StartNewGame(ctx context.Context) (int, error) {
	id := c.randInt(game.MaxGameID)

	c.mu.Lock()
	c.log.reset()
	c.gameID = id
	c.state = nil
	c.endRecorded = false
	c.mu.Unlock()
	c.notify()

	if err := c.api.NewGame(ctx, id); err != nil {
		return id, err
	}
	if err := c.refresh(ctx); err != nil {
		// The mutation succeeded; the next block notification re-fetches.
		c.logger.Warn("initial state fetch failed", "gameId", id, "err", err)
	}
	return id, nil
}

// HandleKey translates a key press into a move mutation. Moves are gated by
// the last *fetched* end flag only, so a move can race a server-side game
// end; the chain drops such moves. Invalid keys are logged and dropped
// without issuing anything.
func (c *Controller) HandleKey(ctx context.Context, key string) error {
	c.mu.Lock()
	gameID := c.gameID
	ended := c.state != nil && c.state.IsEnded
	c.mu.Unlock()

	if gameID == 0 || ended {
		return nil
	}

	direction, err := game.ParseDirection(key)
	if err != nil {
		c.logger.Error("invalid direction", "key", key)
		return nil
	}
	return c.api.MakeMove(ctx, gameID, direction)
}

// HandleNotification consumes one block notification. A height differing
// from the last seen one triggers a state re-fetch (the client holds no
// cache, so this always hits the network). A hash differing from the last
// seen one prepends exactly one log entry stamped with the current time.
func (c *Controller) HandleNotification(ctx context.Context, n linera.Notification) {
	nb := n.Reason.NewBlock
	if nb == nil {
		return
	}

	c.mu.Lock()
	newHeight := !c.seenHeight || nb.Height != c.lastHeight
	c.lastHeight = nb.Height
	c.seenHeight = true

	newHash := nb.Hash != c.lastHash
	if newHash {
		c.lastHash = nb.Hash
		c.log.prepend(Entry{Hash: nb.Hash, Timestamp: c.now()})
	}
	active := c.gameID != 0
	c.mu.Unlock()

	if newHash {
		c.notify()
	}
	if newHeight && active {
		if err := c.refresh(ctx); err != nil {
			c.logger.Warn("state refresh failed", "err", err)
		}
	}
}

// Run drives the controller: it creates the first game after a short delay,
// then loops over user events and block notifications until the context is
// cancelled or the notification stream dies.
func (c *Controller) Run(ctx context.Context, events <-chan Event, notifications <-chan linera.Notification) error {
	start := time.NewTimer(c.startDelay)
	defer start.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-start.C:
			// An explicit new game may have beaten the timer; don't
			// clobber it with a second auto-start.
			if c.GameID() != 0 {
				continue
			}
			if _, err := c.StartNewGame(ctx); err != nil {
				return err
			}

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch {
			case ev.NewGame:
				if _, err := c.StartNewGame(ctx); err != nil {
					return err
				}
			case ev.Key != "":
				if err := c.HandleKey(ctx, ev.Key); err != nil {
					c.logger.Warn("move failed", "key", ev.Key, "err", err)
				}
			}

		case n, ok := <-notifications:
			if !ok {
				return &linera.SubscriptionError{Message: "notification stream closed"}
			}
			c.HandleNotification(ctx, n)
		}
	}
}

// refresh re-fetches the active game's state and records the session once
// it first reports an ended game.
func (c *Controller) refresh(ctx context.Context) error {
	c.mu.Lock()
	gameID := c.gameID
	c.mu.Unlock()
	if gameID == 0 {
		return nil
	}

	st, err := c.api.GetGameState(ctx, gameID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	// A stale fetch from a previous game resolves after a restart; drop it.
	if c.gameID != gameID {
		c.mu.Unlock()
		return nil
	}
	c.state = st
	record := st != nil && st.IsEnded && !c.endRecorded
	if record {
		c.endRecorded = true
	}
	c.mu.Unlock()
	c.notify()

	if record && c.history != nil {
		if err := c.history.RecordGame(ctx, st.GameID, st.Score, st.Won()); err != nil {
			c.logger.Warn("record finished game", "gameId", st.GameID, "err", err)
		}
	}
	return nil
}

// notify invokes OnUpdate with coherent copies of state and log.
func (c *Controller) notify() {
	if c.OnUpdate == nil {
		return
	}
	c.mu.Lock()
	st := c.state
	entries := c.log.snapshot()
	c.mu.Unlock()
	c.OnUpdate(st, entries)
}
