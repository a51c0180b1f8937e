package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"backend-racehub/internal/auth"
	"backend-racehub/internal/config"
	"backend-racehub/internal/track"

	"golang.org/x/crypto/bcrypt"
)

func testTracks() track.Source {
	return track.NewCatalog([]track.Track{{
		Name:   "Monaco",
		Points: []track.Point{{Lat: 43.73, Lng: 7.42}, {Lat: 43.74, Lng: 7.43}},
	}})
}

func testCredentials(t *testing.T) (*auth.CredentialsFile, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	file := &auth.CredentialsFile{
		Credentials: auth.Credentials{Usernames: map[string]auth.User{
			"jsmith": {Email: "jsmith@example.com", Name: "John Smith", Password: string(hash)},
		}},
		Cookie: auth.Cookie{Name: "race_auth", Key: "key", ExpiryDays: 1},
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := file.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	return file, path
}

func TestHealthRoute(t *testing.T) {
	s := NewServer(config.Config{ServerPort: ":0", RaceTickInterval: time.Second}, Deps{Tracks: testTracks()})
	defer s.Close()

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 status")
	}
}

func TestRoutesWithoutCredentials(t *testing.T) {
	s := NewServer(config.Config{RaceTickInterval: time.Second}, Deps{Tracks: testTracks()})
	defer s.Close()

	resp, _ := s.App.Test(httptest.NewRequest(http.MethodGet, "/tracks/Monaco", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected track route, got %d", resp.StatusCode)
	}
	resp, _ = s.App.Test(httptest.NewRequest(http.MethodPost, "/race/sessions", nil))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected open race route, got %d", resp.StatusCode)
	}
	resp, _ = s.App.Test(httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected auth routes absent, got %d", resp.StatusCode)
	}
}

func TestRaceRoutesRequireLogin(t *testing.T) {
	file, path := testCredentials(t)
	cfg := config.Config{RaceTickInterval: time.Hour, AuthRequired: true, CredentialsPath: path}
	s := NewServer(cfg, Deps{Tracks: testTracks(), Credentials: file})
	defer s.Close()

	resp, _ := s.App.Test(httptest.NewRequest(http.MethodPost, "/race/sessions", nil))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized, got %d", resp.StatusCode)
	}

	body, _ := json.Marshal(auth.LoginRequest{Username: "jsmith", Password: "secret"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("login: %v", err)
	}
	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "race_auth" {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatalf("expected session cookie")
	}

	req = httptest.NewRequest(http.MethodPost, "/race/sessions", nil)
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	resp, _ = s.App.Test(req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected created, got %d", resp.StatusCode)
	}

	// reads stay public
	resp, _ = s.App.Test(httptest.NewRequest(http.MethodGet, "/tracks", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected tracks readable, got %d", resp.StatusCode)
	}
}

func TestStreamRouteUnknownSession(t *testing.T) {
	s := NewServer(config.Config{RaceTickInterval: time.Second}, Deps{Tracks: testTracks()})
	defer s.Close()

	resp, _ := s.App.Test(httptest.NewRequest(http.MethodGet, "/stream/ws/missing", nil))
	if resp.StatusCode != http.StatusUpgradeRequired {
		t.Fatalf("expected upgrade required, got %d", resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodGet, "/stream/ws/missing", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	resp, _ = s.App.Test(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected not found for unknown session, got %d", resp.StatusCode)
	}
}
