package api_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"multimodalchat/internal/api"
	"multimodalchat/internal/config"
	"multimodalchat/internal/handlers"
	"multimodalchat/internal/render"
	"multimodalchat/internal/scheduler"
	"multimodalchat/internal/services"
	"multimodalchat/internal/store/memory"
)

func newTestRouter(t *testing.T, logOut io.Writer) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(logOut, nil))
	st := memory.NewMessageStore(logger)
	chat := services.NewChatService(st, scheduler.NewFake(), services.WithLogger(logger))
	t.Cleanup(chat.Close)
	annotations := services.NewAnnotationService(st, render.NewRenderer(nil, nil, logger), logger)

	return api.NewRouter(api.RouterDependencies{
		ChatHandler:       handlers.NewChatHandlers(chat, logger),
		AnnotationHandler: handlers.NewAnnotationHandlers(annotations, logger),
		StreamHandler:     handlers.NewStreamHandler(st, nil, logger),
		Config:            &config.Config{AllowedOrigins: []string{"http://localhost:5173"}, ReplyDelay: time.Second},
		Logger:            logger,
	})
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, io.Discard)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK || rr.Body.String() != "OK" {
		t.Fatalf("unexpected health response %d %q", rr.Code, rr.Body.String())
	}
}

func TestRoutesAreMounted(t *testing.T) {
	router := newTestRouter(t, io.Discard)

	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/v1/messages", http.StatusOK},
		{http.MethodGet, "/v1/messages/1/annotations", http.StatusNotFound},
		{http.MethodGet, "/v1/annotation-sessions/not-a-uuid", http.StatusBadRequest},
		{http.MethodPut, "/v1/messages", http.StatusMethodNotAllowed},
		{http.MethodGet, "/v1/unknown", http.StatusNotFound},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))
		if rr.Code != tc.want {
			t.Errorf("%s %s: expected %d, got %d", tc.method, tc.path, tc.want, rr.Code)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t, io.Discard)

	req := httptest.NewRequest(http.MethodOptions, "/v1/messages", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected origin to be allowed, got %q", got)
	}
}

func TestRequestLoggerWritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	router := newTestRouter(t, &buf)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(`{"content":"hi"}`)))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}

	out := buf.String()
	for _, want := range []string{`"msg":"http request"`, `"status":201`, `"path":"/v1/messages"`, `"request_id":`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
}
