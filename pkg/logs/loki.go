package logs

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/Alijeyrad/mindcare_backend/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// lokiWriter pushes each JSON log line as its own entry to Loki's push API.
// A failed push is dropped; slog gives a handler no way to retry.
type lokiWriter struct {
	endpoint string
	username string
	password string
	labels   map[string]string
	client   *http.Client
}

type lokiPush struct {
	Streams []lokiStream `json:"streams"`
}

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

func newLokiHandler(c config.LokiConfig, labels map[string]string, level slog.Level) slog.Handler {
	lw := &lokiWriter{
		endpoint: c.Endpoint + "/loki/api/v1/push",
		username: c.Username,
		password: c.Password,
		labels:   labels,
		client:   &http.Client{Timeout: 3 * time.Second},
	}
	return slog.NewJSONHandler(lw, &slog.HandlerOptions{Level: level})
}

func (lw *lokiWriter) payload(line []byte, at time.Time) ([]byte, error) {
	return json.Marshal(lokiPush{Streams: []lokiStream{{
		Stream: lw.labels,
		Values: [][2]string{{strconv.FormatInt(at.UnixNano(), 10), string(bytes.TrimRight(line, "\n"))}},
	}}})
}

func (lw *lokiWriter) Write(p []byte) (int, error) {
	body, err := lw.payload(p, time.Now())
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequest(http.MethodPost, lw.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if lw.username != "" {
		req.SetBasicAuth(lw.username, lw.password)
	}

	resp, err := lw.client.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	return len(p), nil
}
