package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/lumipallolabs/treemapview/internal/config"
	"github.com/lumipallolabs/treemapview/internal/core"
	"github.com/lumipallolabs/treemapview/internal/export"
	"github.com/lumipallolabs/treemapview/internal/model"
)

func newTestServer(t *testing.T) (*Server, *core.Controller) {
	t.Helper()
	tree := model.NewTree("/r")
	a := tree.Add(tree.Root(), "a", model.KindDir, 0)
	tree.Add(a, "a1.bin", model.KindFile, 300)
	tree.Add(a, "a2.bin", model.KindFile, 100)
	tree.Add(tree.Root(), "c.txt", model.KindFile, 50)
	tree.ComputeSizes()

	c := core.NewController(tree, config.Default(), 200, 100)
	return New(c, log.New(io.Discard)), c
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeDoc(t *testing.T, rec *httptest.ResponseRecorder) export.Document {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var doc export.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	return doc
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("health = %d %s", rec.Code, rec.Body.String())
	}

	do(t, s, http.MethodGet, "/api/treemap", "")
	rec = do(t, s, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `path="/api/treemap"`) {
		t.Errorf("metrics = %d, missing request counter", rec.Code)
	}
}

func TestGetTreemap(t *testing.T) {
	s, _ := newTestServer(t)
	doc := decodeDoc(t, do(t, s, http.MethodGet, "/api/treemap", ""))
	if doc.Root != "/r" || doc.Width != 200 || doc.Tile == nil || len(doc.Tile.Children) != 2 {
		t.Errorf("document = %+v", doc)
	}
}

func TestNavigation(t *testing.T) {
	s, _ := newTestServer(t)

	doc := decodeDoc(t, do(t, s, http.MethodPost, "/api/select", `{"url":"/r/a/a1.bin"}`))
	if doc.Selected != "/r/a/a1.bin" {
		t.Fatalf("selected = %q", doc.Selected)
	}

	doc = decodeDoc(t, do(t, s, http.MethodPost, "/api/zoom-in", ""))
	if doc.Root != "/r/a" || doc.Tile.URL != "/r/a" {
		t.Fatalf("root after zoom in = %q", doc.Root)
	}

	doc = decodeDoc(t, do(t, s, http.MethodPost, "/api/select-parent", ""))
	if doc.Selected != "/r/a" {
		t.Errorf("selected after select parent = %q", doc.Selected)
	}

	doc = decodeDoc(t, do(t, s, http.MethodPost, "/api/zoom-out", ""))
	if doc.Root != "/r" {
		t.Errorf("root after zoom out = %q", doc.Root)
	}

	// At the tree root zooming out changes nothing
	doc = decodeDoc(t, do(t, s, http.MethodPost, "/api/zoom-out", ""))
	if doc.Root != "/r" {
		t.Errorf("root after second zoom out = %q", doc.Root)
	}
}

func TestSelectByPoint(t *testing.T) {
	s, c := newTestServer(t)

	var x, y float64
	c.Read(func(v *core.View) {
		tile := v.Treemap().Find(v.Tree().Locate("/r/c.txt"))
		x, y = tile.Rect.X+1, tile.Rect.Y+1
	})
	body, _ := json.Marshal(map[string]float64{"x": x, "y": y})
	doc := decodeDoc(t, do(t, s, http.MethodPost, "/api/select", string(body)))
	if doc.Selected != "/r/c.txt" {
		t.Errorf("selected = %q", doc.Selected)
	}
}

func TestFailedSelectKeepsSelection(t *testing.T) {
	s, c := newTestServer(t)
	var events int
	c.Subscribe(func(e core.Event) {
		if _, ok := e.(core.SelectionChangedEvent); ok {
			events++
		}
	})

	decodeDoc(t, do(t, s, http.MethodPost, "/api/select", `{"url":"/r/a"}`))
	events = 0

	tests := []struct {
		name string
		body string
	}{
		{"missing url", `{"url":"/r/missing"}`},
		{"point left of the map", `{"x":-5,"y":10}`},
		{"point below the map", `{"x":10,"y":500}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, s, http.MethodPost, "/api/select", tt.body); rec.Code != http.StatusNotFound {
				t.Errorf("status = %d, want 404", rec.Code)
			}
			c.Read(func(v *core.View) {
				if got := v.Tree().URL(v.Selected()); v.Selected() == model.NoNode || got != "/r/a" {
					t.Errorf("selection = %d (%q), want /r/a", v.Selected(), got)
				}
			})
			if events != 0 {
				t.Errorf("%d selection events on a failed request", events)
			}
		})
	}
}

func TestSelectErrors(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"empty body", "", http.StatusBadRequest},
		{"bad json", "{", http.StatusBadRequest},
		{"unknown field", `{"node":1}`, http.StatusBadRequest},
		{"both point and url", `{"x":1,"y":1,"url":"/r"}`, http.StatusBadRequest},
		{"only x", `{"x":1}`, http.StatusBadRequest},
		{"missing node", `{"url":"/r/nope"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/select", tt.body)
			if rec.Code != tt.code {
				t.Errorf("status = %d, want %d", rec.Code, tt.code)
			}
			if !strings.Contains(rec.Body.String(), `"error"`) {
				t.Errorf("body = %s", rec.Body.String())
			}
		})
	}
}

func TestResizeSuppresses(t *testing.T) {
	s, _ := newTestServer(t)

	doc := decodeDoc(t, do(t, s, http.MethodPost, "/api/resize", `{"width":10,"height":10}`))
	if !doc.Suppressed || doc.Tile != nil || doc.Root != "/r" {
		t.Errorf("document = %+v", doc)
	}
	if rec := do(t, s, http.MethodGet, "/api/treemap.png", ""); rec.Code != http.StatusConflict {
		t.Errorf("png while suppressed = %d", rec.Code)
	}

	doc = decodeDoc(t, do(t, s, http.MethodPost, "/api/resize", `{"width":300,"height":120}`))
	if doc.Suppressed || doc.Width != 300 || doc.Height != 120 {
		t.Errorf("document = %+v", doc)
	}

	if rec := do(t, s, http.MethodPost, "/api/resize", `{"width":-1,"height":5}`); rec.Code != http.StatusBadRequest {
		t.Errorf("negative size = %d", rec.Code)
	}
}

func TestResizeRejectsHugeViews(t *testing.T) {
	s, c := newTestServer(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"both too large", `{"width":1000000,"height":1000000}`, http.StatusBadRequest},
		{"width too large", `{"width":8193,"height":100}`, http.StatusBadRequest},
		{"height too large", `{"width":100,"height":8193}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, s, http.MethodPost, "/api/resize", tt.body); rec.Code != tt.code {
				t.Errorf("status = %d, want %d", rec.Code, tt.code)
			}
			c.Read(func(v *core.View) {
				if w, h := v.Size(); w != 200 || h != 100 {
					t.Errorf("size changed to %dx%d", w, h)
				}
			})
		})
	}

	doc := decodeDoc(t, do(t, s, http.MethodPost, "/api/resize", `{"width":8192,"height":20}`))
	if doc.Width != 8192 || doc.Height != 20 {
		t.Errorf("document = %vx%v", doc.Width, doc.Height)
	}
}

func TestImages(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/treemap.png", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("png = %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Errorf("png bounds = %v", b)
	}

	rec = do(t, s, http.MethodGet, "/api/treemap.svg", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<title>/r/c.txt</title>") {
		t.Errorf("svg = %d %s", rec.Code, rec.Body.String())
	}
}

func TestRemove(t *testing.T) {
	s, c := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/remove", `{"url":"/r/a"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove = %d %s", rec.Code, rec.Body.String())
	}
	var resp removeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Size != 400 || resp.TotalFreed != 400 {
		t.Errorf("response = %+v", resp)
	}
	if c.Freed() != 400 {
		t.Errorf("freed = %d", c.Freed())
	}

	if rec := do(t, s, http.MethodPost, "/api/remove", `{"url":"/r/a"}`); rec.Code != http.StatusNotFound {
		t.Errorf("second remove = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/remove", `{"url":"/r"}`); rec.Code != http.StatusConflict {
		t.Errorf("removing the root = %d", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/status", "")
	if !strings.Contains(rec.Body.String(), `"freed":400`) {
		t.Errorf("status = %s", rec.Body.String())
	}
}

func TestUnknownRoute(t *testing.T) {
	s, _ := newTestServer(t)
	if rec := do(t, s, http.MethodGet, "/api/zoom-in", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET zoom-in = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown path = %d", rec.Code)
	}
}
