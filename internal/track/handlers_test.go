package track

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func newTestApp(src Source) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app.Group("/tracks"), src)
	return app
}

func TestTrackHandlersList(t *testing.T) {
	app := newTestApp(NewCatalog([]Track{monaco(), {Name: "Abu Dhabi"}}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/tracks", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("list status: %v", err)
	}
	var body struct {
		Tracks []string `json:"tracks"`
	}
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %v", body.Tracks)
	}
}

func TestTrackHandlersEmptyList(t *testing.T) {
	app := newTestApp(NewCatalog(nil))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/tracks", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("list status: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	if string(raw) != `{"tracks":[]}` {
		t.Fatalf("expected empty array, got %s", raw)
	}
}

func TestTrackHandlersGet(t *testing.T) {
	app := newTestApp(NewCatalog([]Track{monaco(), {Name: "Abu Dhabi"}}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/tracks/Monaco", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("get status: %v", err)
	}
	var body map[string]any
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["point_count"].(float64) != 3 {
		t.Fatalf("unexpected point count %v", body["point_count"])
	}
	if _, ok := body["bounds"]; !ok {
		t.Fatalf("expected bounds")
	}
	feature := body["feature"].(map[string]any)
	if feature["type"] != "Feature" {
		t.Fatalf("expected GeoJSON feature, got %v", feature["type"])
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/tracks/Abu%20Dhabi", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("escaped name status: %v", err)
	}
	raw, _ = io.ReadAll(resp.Body)
	body = map[string]any{}
	_ = json.Unmarshal(raw, &body)
	if _, ok := body["bounds"]; ok {
		t.Fatalf("expected no bounds for empty track")
	}
}

func TestTrackHandlersNotFound(t *testing.T) {
	app := newTestApp(NewCatalog(nil))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/tracks/Spa", nil))
	if err != nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected not found")
	}
}

func TestTrackHandlersStoreError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT name FROM race_tracks`).WillReturnError(errStore)
	mock.ExpectQuery(`SELECT name, coordinates`).WithArgs("Monaco").WillReturnError(errStore)

	app := newTestApp(NewStore(mock))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/tracks", nil))
	if err != nil || resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected list error")
	}
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/tracks/Monaco", nil))
	if err != nil || resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected get error")
	}
}
