// Command game2048 is the terminal client for the 2048 chain application.
// It creates a game on startup, renders the board, translates arrow keys
// into move mutations, and re-fetches state whenever the chain announces a
// new block.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"atomicgo.dev/keyboard"
	"atomicgo.dev/keyboard/keys"
	"github.com/pterm/pterm"

	"github.com/lpaydat/game2048-cli/internal/game"
	"github.com/lpaydat/game2048-cli/internal/history"
	"github.com/lpaydat/game2048-cli/internal/linera"
	"github.com/lpaydat/game2048-cli/internal/session"
	"github.com/lpaydat/game2048-cli/internal/ui"
)

// defaultChainID matches the chain the application's messages are sent to.
const defaultChainID = "256e1dbc00482ddd619c293cc0df94d366afe7980022bb22d99e33036fd465dd"

func main() {
	var (
		chainID     string
		appID       string
		port        int
		historyPath string
	)
	flag.StringVar(&chainID, "chain", defaultChainID, "chain identifier")
	flag.StringVar(&appID, "app", os.Getenv("GAME2048_APP_ID"), "application identifier")
	flag.IntVar(&port, "port", 8080, "node service port")
	flag.StringVar(&historyPath, "history", "", "session history database path (empty disables recording)")
	flag.Parse()

	if appID == "" {
		fmt.Fprintln(os.Stderr, "usage: game2048 -app <application-id> [-chain <chain-id>] [-port <port>]")
		os.Exit(1)
	}

	logger := slog.New(pterm.NewSlogHandler(&pterm.DefaultLogger))

	if err := run(chainID, appID, port, historyPath, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("exit", "err", err)
		os.Exit(1)
	}
}

func run(chainID, appID string, port int, historyPath string, logger *slog.Logger) error {
	node := linera.NewClient(linera.Config{
		ChainID:       chainID,
		ApplicationID: appID,
		Port:          port,
	})
	defer node.Close()
	logger.Info("connecting", "chain", node.ChainID(), "app", node.ApplicationID(), "port", port)

	var store *history.Store
	var recorder session.Recorder
	if historyPath != "" {
		s, err := history.New(historyPath)
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		defer s.Close()
		store = s
		recorder = s
	}

	ctrl := session.New(session.Config{
		Game:    game.NewClient(node),
		History: recorder,
		Logger:  logger,
	})

	view, err := ui.NewView()
	if err != nil {
		return fmt.Errorf("start terminal view: %w", err)
	}

	ctrl.OnUpdate = func(st *game.State, entries []session.Entry) {
		view.Render(ctrl.GameID(), st, entries)
	}
	view.Render(0, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifications, err := node.Subscribe(ctx, chainID)
	if err != nil {
		view.Stop()
		return fmt.Errorf("subscribe to notifications: %w", err)
	}

	events := make(chan session.Event, 16)
	go listenKeys(events, cancel)

	runErr := ctrl.Run(ctx, events, notifications)
	view.Stop()
	if store != nil {
		printSummary(store)
	}
	return runErr
}

// printSummary shows past sessions once the live view has been released.
// The run context is cancelled by now, so the reads get their own deadline.
func printSummary(store *history.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	best, err := store.BestScore(ctx)
	if err != nil {
		return
	}
	games, err := store.ListGames(ctx, 5)
	if err != nil {
		return
	}
	pterm.DefaultSection.Println("Past sessions")
	pterm.Println(ui.RenderSummary(games, best))
}

// listenKeys feeds key presses into the controller loop. Key names keep
// their browser-style "Arrow" prefix; the controller strips it.
func listenKeys(events chan<- session.Event, cancel context.CancelFunc) {
	err := keyboard.Listen(func(key keys.Key) (bool, error) {
		switch key.Code {
		case keys.Up:
			events <- session.Event{Key: "ArrowUp"}
		case keys.Down:
			events <- session.Event{Key: "ArrowDown"}
		case keys.Left:
			events <- session.Event{Key: "ArrowLeft"}
		case keys.Right:
			events <- session.Event{Key: "ArrowRight"}
		case keys.CtrlC, keys.Escape:
			return true, nil
		case keys.RuneKey:
			switch key.String() {
			case "n":
				events <- session.Event{NewGame: true}
			case "q":
				return true, nil
			default:
				// Forward anything else so invalid keys follow the
				// log-and-drop path instead of vanishing here.
				events <- session.Event{Key: key.String()}
			}
		}
		return false, nil
	})
	if err != nil {
		pterm.Error.Printfln("keyboard listener: %v", err)
	}
	cancel()
}
