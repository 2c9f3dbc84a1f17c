package logs

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/mindcare_backend/config"
	"github.com/Alijeyrad/mindcare_backend/pkg/reqctx"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestContextHandler_AddsCorrelationIDs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(contextHandler{slog.NewJSONHandler(&buf, nil)})

	uid := uuid.New()
	ctx := reqctx.WithRequestMeta(context.Background(), &reqctx.RequestMeta{RequestID: "req-7"})
	ctx = reqctx.WithCaller(ctx, &reqctx.Caller{UserID: uid, Role: "psychologist"})
	log.InfoContext(ctx, "hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "req-7", rec["request_id"])
	assert.Equal(t, uid.String(), rec["user_id"])
	assert.Equal(t, "psychologist", rec["role"])
	assert.NotContains(t, rec, "trace_id")
}

func TestFanout_RespectsLevels(t *testing.T) {
	var info, errs bytes.Buffer
	log := slog.New(fanout{
		slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&errs, &slog.HandlerOptions{Level: slog.LevelError}),
	}).With("service", "test")

	log.Info("one")
	log.Error("two")

	assert.Equal(t, 2, bytes.Count(info.Bytes(), []byte("\n")))
	assert.Equal(t, 1, bytes.Count(errs.Bytes(), []byte("\n")))
	assert.Contains(t, errs.String(), `"service":"test"`)
}

func TestLokiWriter_Push(t *testing.T) {
	got := make(chan lokiPush, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/loki/api/v1/push", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "grafana", user)
		assert.Equal(t, "secret", pass)

		body, _ := io.ReadAll(r.Body)
		var p lokiPush
		assert.NoError(t, json.Unmarshal(body, &p))
		got <- p
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	h := newLokiHandler(config.LokiConfig{Endpoint: srv.URL, Username: "grafana", Password: "secret"},
		map[string]string{"service": "mindcare_backend", "env": "test"}, slog.LevelInfo)
	slog.New(h).Info("crisis raised", "crisis_id", "crisis_1")

	select {
	case p := <-got:
		require.Len(t, p.Streams, 1)
		assert.Equal(t, "mindcare_backend", p.Streams[0].Stream["service"])
		require.Len(t, p.Streams[0].Values, 1)
		assert.Contains(t, p.Streams[0].Values[0][1], `"crisis_id":"crisis_1"`)
		assert.NotContains(t, p.Streams[0].Values[0][1], "\n")
	case <-time.After(2 * time.Second):
		t.Fatal("no push received")
	}
}
