package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/lpaydat/game2048-cli/internal/game"
	"github.com/lpaydat/game2048-cli/internal/history"
	"github.com/lpaydat/game2048-cli/internal/session"
)

func TestTileLabel(t *testing.T) {
	cases := map[int]string{
		0:  "",
		-1: "",
		1:  "2",
		2:  "4",
		5:  "32",
		11: "2048",
	}
	for exp, want := range cases {
		if got := TileLabel(exp); got != want {
			t.Errorf("TileLabel(%d) = %q, want %q", exp, got, want)
		}
	}
}

func TestRenderBoardNilState(t *testing.T) {
	out := RenderBoard(nil)
	if strings.Count(out, "+------+") == 0 {
		t.Fatalf("missing grid dividers:\n%s", out)
	}
	// Five divider rows frame four board rows.
	if rows := strings.Count(out, "\n"); rows != 2*game.BoardSize+1 {
		t.Errorf("wrong row count %d:\n%s", rows, out)
	}
	if strings.ContainsAny(out, "0123456789") {
		t.Errorf("empty board must render blank cells:\n%s", out)
	}
}

func TestRenderBoardTiles(t *testing.T) {
	st := &game.State{Board: game.Board{
		{1, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 11},
	}}
	out := RenderBoard(st)
	if !strings.Contains(out, "2") {
		t.Errorf("missing tile 2:\n%s", out)
	}
	if !strings.Contains(out, "2048") {
		t.Errorf("missing tile 2048:\n%s", out)
	}
}

func TestRenderHeader(t *testing.T) {
	if got := RenderHeader(0, nil); got != "starting a new game..." {
		t.Errorf("uninitialized header: %q", got)
	}
	got := RenderHeader(42, &game.State{Score: 512})
	if !strings.Contains(got, "42") || !strings.Contains(got, "512") {
		t.Errorf("header missing game id or score: %q", got)
	}
}

func TestRenderOverlay(t *testing.T) {
	if got := RenderOverlay(nil); got != "" {
		t.Errorf("nil state overlay: %q", got)
	}
	if got := RenderOverlay(&game.State{IsEnded: false}); got != "" {
		t.Errorf("running game overlay: %q", got)
	}

	lost := &game.State{IsEnded: true}
	if got := RenderOverlay(lost); got != LoseMessage {
		t.Errorf("lost overlay: %q", got)
	}

	won := &game.State{IsEnded: true}
	won.Board[0][0] = game.WinningTile
	if got := RenderOverlay(won); got != WinMessage {
		t.Errorf("won overlay: %q", got)
	}
}

func TestRenderLog(t *testing.T) {
	if got := RenderLog(nil); got != "(no blocks yet)" {
		t.Errorf("empty log: %q", got)
	}

	ts := time.Date(2025, 6, 1, 9, 30, 15, 0, time.UTC)
	entries := []session.Entry{
		{Hash: "aaaaaaaaaaaaaaaaaaaa", Timestamp: ts},
		{Hash: "bbb", Timestamp: ts},
	}
	out := RenderLog(entries)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "09:30:15") {
		t.Errorf("missing timestamp: %q", lines[0])
	}
	if !strings.Contains(lines[0], "aaaaaaaaaaaa...") {
		t.Errorf("long hashes must be shortened: %q", lines[0])
	}
	if !strings.Contains(lines[1], "bbb") {
		t.Errorf("short hashes pass through: %q", lines[1])
	}
}

func TestRenderSummary(t *testing.T) {
	if got := RenderSummary(nil, 0); got != "no finished games recorded" {
		t.Errorf("empty summary: %q", got)
	}

	ended := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	games := []history.Game{
		{GameID: 42, Score: 2048, Won: true, EndedAt: ended},
		{GameID: 7, Score: 512, Won: false, EndedAt: ended},
	}
	out := RenderSummary(games, 2048)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 games, got %d lines:\n%s", len(lines), out)
	}
	if lines[0] != "best score 2048" {
		t.Errorf("wrong header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "#42") || !strings.Contains(lines[1], "won") {
		t.Errorf("wrong won line: %q", lines[1])
	}
	if !strings.Contains(lines[2], "#7") || !strings.Contains(lines[2], "lost") {
		t.Errorf("wrong lost line: %q", lines[2])
	}
}

func TestRenderLogCapped(t *testing.T) {
	ts := time.Now()
	var entries []session.Entry
	for i := 0; i < 12; i++ {
		entries = append(entries, session.Entry{Hash: "h", Timestamp: ts})
	}
	out := RenderLog(entries)
	if !strings.Contains(out, "... 4 more") {
		t.Errorf("log must cap at %d rows:\n%s", 8, out)
	}
}
