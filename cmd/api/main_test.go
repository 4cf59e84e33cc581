package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/hszk-dev/notecanvas/internal/api/handler"
	"github.com/hszk-dev/notecanvas/internal/config"
	"github.com/hszk-dev/notecanvas/internal/engine"
	"github.com/hszk-dev/notecanvas/internal/infrastructure/cache"
	"github.com/hszk-dev/notecanvas/internal/infrastructure/filestore"
	"github.com/hszk-dev/notecanvas/internal/usecase"
)

func newTestServer(t *testing.T, serverCfg config.ServerConfig) *httptest.Server {
	t.Helper()

	layout, err := filestore.NewLayout(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create layout: %v", err)
	}
	canvasRepo := filestore.NewCanvasRepository(layout)
	noteRepo := filestore.NewNoteRepository(layout)
	mediaStore := filestore.NewMediaStore(layout)
	resultCache := cache.NewMemoryResultCache()

	noteSvc := usecase.NewNoteService(canvasRepo, noteRepo)
	mediaSvc := usecase.NewMediaService(canvasRepo, mediaStore, nil, usecase.DefaultMediaServiceConfig())
	processingSvc := usecase.NewProcessingService(usecase.ProcessingDeps{
		Canvases:  canvasRepo,
		Store:     mediaStore,
		Media:     mediaSvc,
		Notes:     noteSvc,
		OCR:       engine.NewTesseractEngine(engine.DefaultTesseractConfig()),
		Speech:    engine.NewVoskEngine(engine.DefaultVoskConfig()),
		Converter: newConverter(config.FFmpegConfig{Path: "ffmpeg"}),
		Cache:     resultCache,
	}, usecase.DefaultProcessingServiceConfig())

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	r := setupRouter(logger, serverCfg, handlers{
		health:     handler.NewHealthHandler(nil),
		canvas:     handler.NewCanvasHandler(usecase.NewCanvasService(canvasRepo, mediaStore, nil)),
		note:       handler.NewNoteHandler(noteSvc),
		media:      handler.NewMediaHandler(mediaSvc, 1<<20),
		processing: handler.NewProcessingHandler(processingSvc, 1<<20),
		cache:      handler.NewCacheHandler(usecase.NewCacheAdminService(resultCache)),
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return resp, data
}

func TestRouter_CanvasAndNoteLifecycle(t *testing.T) {
	srv := newTestServer(t, config.ServerConfig{})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/v1/canvases", `{"name":"Ideas"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create canvas: expected 201, got %d: %s", resp.StatusCode, body)
	}
	var canvas handler.CanvasResponse
	if err := json.Unmarshal(body, &canvas); err != nil {
		t.Fatalf("failed to decode canvas: %v", err)
	}
	base := srv.URL + "/v1/canvases/" + canvas.ID

	resp, body = doJSON(t, http.MethodPost, base+"/notes", `{"type":"text","x":5,"y":6,"title":"Hello"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create note: expected 201, got %d: %s", resp.StatusCode, body)
	}
	var note handler.NoteResponse
	if err := json.Unmarshal(body, &note); err != nil {
		t.Fatalf("failed to decode note: %v", err)
	}

	resp, body = doJSON(t, http.MethodPatch, base+"/notes/positions", `{"updates":[{"id":"`+note.ID+`","x":50,"y":60}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("move note: expected 200, got %d: %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, http.MethodGet, base+"/notes", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list notes: expected 200, got %d", resp.StatusCode)
	}
	var notes []handler.NoteResponse
	if err := json.Unmarshal(body, &notes); err != nil {
		t.Fatalf("failed to decode notes: %v", err)
	}
	if len(notes) != 1 || notes[0].X != 50 || notes[0].Y != 60 {
		t.Errorf("expected moved note, got %+v", notes)
	}

	resp, body = doJSON(t, http.MethodGet, base+"/media", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list media: expected 200, got %d: %s", resp.StatusCode, body)
	}

	resp, _ = doJSON(t, http.MethodDelete, base, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete canvas: expected 200, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodGet, base+"/notes", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestRouter_AmbientRoutes(t *testing.T) {
	srv := newTestServer(t, config.ServerConfig{})

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{name: "health", method: http.MethodGet, path: "/health", want: http.StatusOK},
		{name: "metrics", method: http.MethodGet, path: "/metrics", want: http.StatusOK},
		{name: "cache stats", method: http.MethodGet, path: "/v1/cache/stats", want: http.StatusOK},
		{name: "cache purge", method: http.MethodPost, path: "/v1/cache/purge", want: http.StatusOK},
		{name: "unknown media", method: http.MethodGet, path: "/media/" + uuid.New().String() + "/images/x.png", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, tt.method, srv.URL+tt.path, "")
			if resp.StatusCode != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, resp.StatusCode, body)
			}
			if resp.Header.Get("X-Request-Id") == "" {
				t.Error("expected X-Request-Id header")
			}
		})
	}
}

func TestRouter_ProcessingRateLimit(t *testing.T) {
	srv := newTestServer(t, config.ServerConfig{ProcessingRPS: 0.001, ProcessingBurst: 1})
	url := srv.URL + "/v1/canvases/" + uuid.New().String() + "/ocr-existing"

	resp, _ := doJSON(t, http.MethodPost, url, `{"file_path":"images/a.png"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("first request: expected 404 for unknown canvas, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPost, url, `{"file_path":"images/a.png"}`)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("second request: expected 429, got %d", resp.StatusCode)
	}

	// Non-processing routes are not limited.
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/v1/canvases", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected canvas list to bypass limiter, got %d", resp.StatusCode)
	}
}
