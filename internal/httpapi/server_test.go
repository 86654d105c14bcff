package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/grouptab/grouptab/internal/auth"
	"github.com/grouptab/grouptab/internal/identity"
	"github.com/grouptab/grouptab/internal/middleware"
	"github.com/grouptab/grouptab/internal/service"
	"github.com/grouptab/grouptab/internal/storage/sqlite"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret-key-for-http-tests-only", time.Hour)
	srv := NewServer(
		service.NewTabService(store, identity.NewTokenMinter(nil)),
		identity.NewResolver(store),
		auth.NewPasswordAuthenticator(store),
		jwtManager,
	)

	mux := http.NewServeMux()
	srv.Register(mux)
	return mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, bearer string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

// registerUser signs a user up and returns their bearer token.
func registerUser(t *testing.T, mux *http.ServeMux, email, name string) string {
	t.Helper()
	rec := doJSON(t, mux, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":        email,
		"display_name": name,
		"password":     "correct-horse",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}
	token, _ := decodeBody(t, rec)["token"].(string)
	if token == "" {
		t.Fatal("register returned no token")
	}
	return token
}

func createTab(t *testing.T, mux *http.ServeMux, bearer, title, typ string) string {
	t.Helper()
	rec := doJSON(t, mux, http.MethodPost, "/api/tabs", bearer, map[string]string{
		"title": title,
		"type":  typ,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create tab returned %d: %s", rec.Code, rec.Body.String())
	}
	tab, _ := decodeBody(t, rec)["tab"].(map[string]any)
	id, _ := tab["id"].(string)
	if id == "" {
		t.Fatal("create tab returned no id")
	}
	return id
}

func TestAuthEndpoints(t *testing.T) {
	mux := newTestMux(t)

	token := registerUser(t, mux, "tess@example.com", "Tess")
	if token == "" {
		t.Fatal("empty token")
	}

	t.Run("login", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "tess@example.com",
			"password": "correct-horse",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("login returned %d: %s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		user, _ := body["user"].(map[string]any)
		if user["email"] != "tess@example.com" {
			t.Errorf("user = %+v", user)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "tess@example.com",
			"password": "wrong",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("login returned %d, want 401", rec.Code)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/api/auth/register", "", map[string]string{
			"email":        "tess@example.com",
			"display_name": "Tess Again",
			"password":     "correct-horse",
		})
		if rec.Code != http.StatusConflict {
			t.Errorf("register returned %d, want 409", rec.Code)
		}
	})
}

func TestTabEndpoints(t *testing.T) {
	mux := newTestMux(t)
	bearer := registerUser(t, mux, "uma@example.com", "Uma")

	t.Run("create requires auth", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/api/tabs", "", map[string]string{
			"title": "No session",
			"type":  "one_bill",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("returned %d, want 401", rec.Code)
		}
	})

	tabID := createTab(t, mux, bearer, "Beach house", "trip")

	t.Run("anonymous can view", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodGet, "/api/tabs/"+tabID, "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("returned %d: %s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		if _, ok := body["current_participant"]; ok {
			t.Error("anonymous viewer should have no current_participant")
		}
		participants, _ := body["participants"].([]any)
		if len(participants) != 1 {
			t.Errorf("got %d participants, want the organizer", len(participants))
		}
	})

	t.Run("creator sees themselves", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodGet, "/api/tabs/"+tabID, bearer, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("returned %d: %s", rec.Code, rec.Body.String())
		}
		current, _ := decodeBody(t, rec)["current_participant"].(map[string]any)
		if current["role"] != "organizer" {
			t.Errorf("current_participant = %+v", current)
		}
	})

	t.Run("missing tab is 404", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodGet, "/api/tabs/nonexistent-id", "", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("returned %d, want 404", rec.Code)
		}
	})

	t.Run("listing shows participant counts", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodGet, "/api/tabs", bearer, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("returned %d: %s", rec.Code, rec.Body.String())
		}
		tabs, _ := decodeBody(t, rec)["tabs"].([]any)
		if len(tabs) != 1 {
			t.Fatalf("got %d tabs, want 1", len(tabs))
		}
		entry, _ := tabs[0].(map[string]any)
		if entry["participant_count"] != float64(1) {
			t.Errorf("participant_count = %v, want 1", entry["participant_count"])
		}
	})
}

func TestGuestFlow(t *testing.T) {
	mux := newTestMux(t)
	bearer := registerUser(t, mux, "vic@example.com", "Vic")
	tabID := createTab(t, mux, bearer, "Karaoke night", "one_bill")

	var guestCookie *http.Cookie
	var guestID string

	t.Run("join by name sets session cookie", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/api/tabs/"+tabID+"/join", "", map[string]string{
			"name": "Wren",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("returned %d: %s", rec.Code, rec.Body.String())
		}

		body := decodeBody(t, rec)
		token, _ := body["token"].(string)
		if len(token) != 32 {
			t.Errorf("token = %q, want 32 hex chars", token)
		}
		participant, _ := body["participant"].(map[string]any)
		guestID, _ = participant["id"].(string)
		if participant["guest_name"] != "Wren" {
			t.Errorf("participant = %+v", participant)
		}

		for _, c := range rec.Result().Cookies() {
			if c.Name == middleware.GuestCookieName {
				guestCookie = c
			}
		}
		if guestCookie == nil {
			t.Fatal("no guest session cookie set")
		}
		if !guestCookie.HttpOnly || guestCookie.Value != token {
			t.Errorf("cookie = %+v", guestCookie)
		}
	})

	t.Run("cookie reclaims the same guest", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/api/tabs/"+tabID+"/join", "", nil, guestCookie)
		if rec.Code != http.StatusOK {
			t.Fatalf("returned %d: %s", rec.Code, rec.Body.String())
		}
		participant, _ := decodeBody(t, rec)["participant"].(map[string]any)
		if participant["id"] != guestID {
			t.Errorf("reclaimed %v, want %v", participant["id"], guestID)
		}
	})

	t.Run("guest cannot add expenses", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/api/tabs/"+tabID+"/expenses", "", map[string]any{
			"description":  "Drinks",
			"amount_cents": 2400,
		}, guestCookie)
		if rec.Code != http.StatusForbidden {
			t.Errorf("returned %d, want 403", rec.Code)
		}
	})

	t.Run("guest can record a payment", func(t *testing.T) {
		detail := doJSON(t, mux, http.MethodGet, "/api/tabs/"+tabID, bearer, nil)
		organizer, _ := decodeBody(t, detail)["current_participant"].(map[string]any)

		rec := doJSON(t, mux, http.MethodPost, "/api/tabs/"+tabID+"/payments", "", map[string]any{
			"to_participant_id": organizer["id"],
			"amount_cents":      1200,
		}, guestCookie)
		if rec.Code != http.StatusCreated {
			t.Fatalf("returned %d: %s", rec.Code, rec.Body.String())
		}
		payment, _ := decodeBody(t, rec)["payment"].(map[string]any)
		if payment["amount_cents"] != float64(1200) {
			t.Errorf("payment = %+v", payment)
		}
	})

	t.Run("tokens never appear in participant listings", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodGet, "/api/tabs/"+tabID, "", nil)
		if bytes.Contains(rec.Body.Bytes(), []byte(guestCookie.Value)) {
			t.Error("guest token leaked into tab detail")
		}
	})
}

func TestExpenseAndSettlementEndpoints(t *testing.T) {
	mux := newTestMux(t)
	alice := registerUser(t, mux, "alice@example.com", "Alice")
	bob := registerUser(t, mux, "bob@example.com", "Bob")
	tabID := createTab(t, mux, alice, "Cottage", "trip")

	if rec := doJSON(t, mux, http.MethodPost, "/api/tabs/"+tabID+"/join", bob, nil); rec.Code != http.StatusOK {
		t.Fatalf("member join returned %d: %s", rec.Code, rec.Body.String())
	}

	rec := doJSON(t, mux, http.MethodPost, "/api/tabs/"+tabID+"/expenses", alice, map[string]any{
		"description":  "Cottage rent",
		"amount_cents": 9000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add expense returned %d: %s", rec.Code, rec.Body.String())
	}

	t.Run("settlement reports integer cents", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodGet, "/api/tabs/"+tabID+"/settlement", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("returned %d: %s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)

		balances, _ := body["balances"].([]any)
		if len(balances) != 2 {
			t.Fatalf("got %d balances, want 2", len(balances))
		}
		seen := map[float64]bool{}
		for _, raw := range balances {
			b, _ := raw.(map[string]any)
			cents, ok := b["balance_cents"].(float64)
			if !ok || cents != float64(int64(cents)) {
				t.Errorf("balance_cents = %v, want an integer", b["balance_cents"])
			}
			seen[cents] = true
		}
		if !seen[4500] || !seen[-4500] {
			t.Errorf("balances = %v, want +4500 and -4500", seen)
		}

		suggestions, _ := body["suggestions"].([]any)
		if len(suggestions) != 1 {
			t.Fatalf("got %d suggestions, want 1", len(suggestions))
		}
		tr, _ := suggestions[0].(map[string]any)
		if tr["amount_cents"] != float64(4500) {
			t.Errorf("suggestion = %+v", tr)
		}
	})

	t.Run("close then reject new entries", func(t *testing.T) {
		if rec := doJSON(t, mux, http.MethodPost, "/api/tabs/"+tabID+"/close", bob, nil); rec.Code != http.StatusForbidden {
			t.Errorf("member close returned %d, want 403", rec.Code)
		}
		if rec := doJSON(t, mux, http.MethodPost, "/api/tabs/"+tabID+"/close", alice, nil); rec.Code != http.StatusOK {
			t.Errorf("organizer close returned %d: %s", rec.Code, rec.Body.String())
		}
		rec := doJSON(t, mux, http.MethodPost, "/api/tabs/"+tabID+"/expenses", alice, map[string]any{
			"description":  "Too late",
			"amount_cents": 100,
		})
		if rec.Code != http.StatusForbidden {
			t.Errorf("expense on closed tab returned %d, want 403", rec.Code)
		}
	})
}
