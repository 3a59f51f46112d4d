package tokend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "tokens.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewServer(store, 0, log)
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := testServer(t).Routes()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("health returned %d", rec.Code)
	}
}

func TestCreateToken(t *testing.T) {
	h := testServer(t).Routes()

	rec := postJSON(t, h, "/create_token", `{"name":"MyToken","symbol":"MTK","total_supply":1000000}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create returned %d: %s", rec.Code, rec.Body)
	}
	var msg string
	if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil {
		t.Fatalf("body is not a bare JSON string: %s", rec.Body)
	}
	if msg != "Token created successfully" {
		t.Errorf("wrong message: %q", msg)
	}
}

func TestCreateTokenDuplicateName(t *testing.T) {
	h := testServer(t).Routes()

	if rec := postJSON(t, h, "/create_token", `{"name":"MyToken","symbol":"MTK","total_supply":1}`); rec.Code != http.StatusOK {
		t.Fatalf("first create returned %d", rec.Code)
	}
	rec := postJSON(t, h, "/create_token", `{"name":"MyToken","symbol":"OTHER","total_supply":2}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate create returned %d", rec.Code)
	}
	var msg string
	if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil {
		t.Fatalf("body is not a bare JSON string: %s", rec.Body)
	}
	if !strings.HasPrefix(msg, "Error:") {
		t.Errorf("failure messages start with Error:, got %q", msg)
	}
}

func TestCreateTokenValidation(t *testing.T) {
	h := testServer(t).Routes()

	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"symbol":"MTK","total_supply":1}`},
		{"missing symbol", `{"name":"MyToken","total_supply":1}`},
		{"missing supply", `{"name":"MyToken","symbol":"MTK"}`},
		{"zero supply", `{"name":"MyToken","symbol":"MTK","total_supply":0}`},
		{"negative supply", `{"name":"MyToken","symbol":"MTK","total_supply":-5}`},
		{"malformed json", `{"name":`},
		{"unknown fields", `{"name":"A","symbol":"B","total_supply":1,"extra":true}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, h, "/create_token", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("returned %d, want 400", rec.Code)
			}
		})
	}
}

func TestListTokens(t *testing.T) {
	h := testServer(t).Routes()

	for _, body := range []string{
		`{"name":"Alpha","symbol":"ALP","total_supply":10}`,
		`{"name":"Beta","symbol":"BET","total_supply":20}`,
	} {
		if rec := postJSON(t, h, "/create_token", body); rec.Code != http.StatusOK {
			t.Fatalf("create returned %d", rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/tokens", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list returned %d", rec.Code)
	}

	var resp struct {
		Tokens []Token `json:"tokens"`
		Count  int     `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if resp.Count != 2 || len(resp.Tokens) != 2 {
		t.Fatalf("expected 2 tokens, got count=%d len=%d", resp.Count, len(resp.Tokens))
	}
}

func TestGetTokenByName(t *testing.T) {
	h := testServer(t).Routes()

	if rec := postJSON(t, h, "/create_token", `{"name":"MyToken","symbol":"MTK","total_supply":42}`); rec.Code != http.StatusOK {
		t.Fatalf("create returned %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/tokens/MyToken", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get returned %d: %s", rec.Code, rec.Body)
	}
	var token Token
	if err := json.Unmarshal(rec.Body.Bytes(), &token); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if token.Name != "MyToken" || token.Symbol != "MTK" || token.TotalSupply != 42 {
		t.Errorf("wrong token: %+v", token)
	}

	req = httptest.NewRequest(http.MethodGet, "/tokens/Missing", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing token returned %d", rec.Code)
	}
}

func TestStoreCreateAndGet(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "tokens.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	created, err := store.CreateToken(ctx, "MyToken", "MTK", 1000000)
	if err != nil {
		t.Fatalf("CreateToken failed: %v", err)
	}

	got, found, err := store.GetToken(ctx, "MyToken")
	if err != nil || !found {
		t.Fatalf("GetToken: found=%v err=%v", found, err)
	}
	if got.ID != created.ID || got.Symbol != "MTK" || got.TotalSupply != 1000000 {
		t.Errorf("round trip mismatch: %+v vs %+v", got, created)
	}

	if _, found, err := store.GetToken(ctx, "Nope"); err != nil || found {
		t.Errorf("missing token: found=%v err=%v", found, err)
	}

	if _, err := store.CreateToken(ctx, "MyToken", "X", 1); err != ErrTokenExists {
		t.Errorf("duplicate insert: want ErrTokenExists, got %v", err)
	}
}
