// Package ui renders the game view in the terminal: board grid, score
// header, block log, and the end-of-game overlay. Rendering is pure string
// assembly so it stays testable; only View touches the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/lpaydat/game2048-cli/internal/game"
	"github.com/lpaydat/game2048-cli/internal/history"
	"github.com/lpaydat/game2048-cli/internal/session"
)

const (
	// WinMessage shows when an ended board holds the 2048 tile.
	WinMessage = "You win!"
	// LoseMessage shows for every other ended board.
	LoseMessage = "Game over"

	cellWidth  = 6
	maxLogRows = 8
)

// TileLabel formats one cell: blank for empty, otherwise the tile value
// (cells carry exponents, so 11 prints as 2048).
func TileLabel(exp int) string {
	if exp <= 0 {
		return ""
	}
	return fmt.Sprintf("%d", 1<<exp)
}

// RenderBoard draws the 4x4 grid. A nil state renders the all-zero
// placeholder shown before the first fetch resolves.
func RenderBoard(st *game.State) string {
	var board game.Board
	if st != nil {
		board = st.Board
	}

	divider := "+" + strings.Repeat(strings.Repeat("-", cellWidth)+"+", game.BoardSize)
	var b strings.Builder
	b.WriteString(divider)
	b.WriteByte('\n')
	for _, row := range board {
		b.WriteByte('|')
		for _, cell := range row {
			b.WriteString(center(TileLabel(cell), cellWidth))
			b.WriteByte('|')
		}
		b.WriteByte('\n')
		b.WriteString(divider)
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderHeader shows the active game and its score.
func RenderHeader(gameID int, st *game.State) string {
	var score int64
	if st != nil {
		score = st.Score
	}
	if gameID == 0 {
		return "starting a new game..."
	}
	return fmt.Sprintf("game #%d    score %d", gameID, score)
}

// RenderOverlay returns the end-of-game banner, or "" while playing.
func RenderOverlay(st *game.State) string {
	if st == nil || !st.IsEnded {
		return ""
	}
	if st.Won() {
		return WinMessage
	}
	return LoseMessage
}

// RenderLog lists observed blocks, newest first, capped to maxLogRows.
func RenderLog(entries []session.Entry) string {
	if len(entries) == 0 {
		return "(no blocks yet)"
	}
	var b strings.Builder
	for i, e := range entries {
		if i == maxLogRows {
			fmt.Fprintf(&b, "... %d more\n", len(entries)-maxLogRows)
			break
		}
		fmt.Fprintf(&b, "%s  %s\n", e.Timestamp.Format("15:04:05"), shortHash(e.Hash))
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderSummary lists past sessions with the best recorded score, newest
// first. Shown on quit when history recording is enabled.
func RenderSummary(games []history.Game, best int64) string {
	if len(games) == 0 {
		return "no finished games recorded"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "best score %d\n", best)
	for _, g := range games {
		outcome := "lost"
		if g.Won {
			outcome = "won"
		}
		fmt.Fprintf(&b, "%s  game #%-5d  score %-6d  %s\n",
			g.EndedAt.Local().Format("2006-01-02 15:04"), g.GameID, g.Score, outcome)
	}
	return strings.TrimRight(b.String(), "\n")
}

// View repaints the full screen area on every update.
type View struct {
	area *pterm.AreaPrinter
}

// NewView starts the live terminal area.
func NewView() (*View, error) {
	area, err := pterm.DefaultArea.WithCenter().Start()
	if err != nil {
		return nil, err
	}
	return &View{area: area}, nil
}

// Render repaints the view from the latest controller snapshot.
func (v *View) Render(gameID int, st *game.State, entries []session.Entry) {
	boardPanel := pterm.DefaultBox.
		WithTitle(RenderHeader(gameID, st)).
		WithTitleTopCenter().
		Sprint(RenderBoard(st))

	logPanel := pterm.DefaultBox.
		WithTitle("blocks").
		WithTitleTopCenter().
		Sprint(RenderLog(entries))

	var b strings.Builder
	b.WriteString(boardPanel)
	b.WriteByte('\n')
	if overlay := RenderOverlay(st); overlay != "" {
		style := pterm.Error
		if overlay == WinMessage {
			style = pterm.Success
		}
		b.WriteString(style.Sprint(overlay))
		b.WriteByte('\n')
	}
	b.WriteString(logPanel)
	b.WriteByte('\n')
	b.WriteString(pterm.Gray("arrows: move    n: new game    q: quit"))

	v.area.Update(b.String())
}

// Stop releases the terminal area.
func (v *View) Stop() error {
	return v.area.Stop()
}

func center(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-len(s)-left)
}

func shortHash(h string) string {
	if len(h) <= 12 {
		return h
	}
	return h[:12] + "..."
}
