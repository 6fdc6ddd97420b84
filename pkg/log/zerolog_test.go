package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestZerologLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologLogger(zerolog.New(&buf))

	l.Info("request deferred",
		String("url", "/v1/items"),
		Int("pending", 3),
		Bool("gate_open", false),
		Duration("poll", time.Second),
		Err(errors.New("boom")),
	)

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if got["message"] != "request deferred" {
		t.Errorf("message = %v", got["message"])
	}
	if got["url"] != "/v1/items" {
		t.Errorf("url = %v", got["url"])
	}
	if got["pending"] != float64(3) {
		t.Errorf("pending = %v", got["pending"])
	}
	if got["gate_open"] != false {
		t.Errorf("gate_open = %v", got["gate_open"])
	}
	if got["error"] != "boom" {
		t.Errorf("error = %v", got["error"])
	}
}

func TestZerologLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologLogger(zerolog.New(&buf)).With(String("request_id", "abc"))

	l.Warn("gate timeout")

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if got["request_id"] != "abc" {
		t.Errorf("request_id = %v, want abc", got["request_id"])
	}
	if got["level"] != "warn" {
		t.Errorf("level = %v, want warn", got["level"])
	}
}

func TestZerologLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologLogger(zerolog.New(&buf).Level(zerolog.InfoLevel))

	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug message written at info level: %s", buf.String())
	}
}

func TestNoopLogger(t *testing.T) {
	var l Logger = NewNoopLogger()
	l.Info("ignored")
	if l.With(String("k", "v")) == nil {
		t.Error("With returned nil")
	}
}

func TestDispatchFields(t *testing.T) {
	if f := RequestID("abc"); f.Key != "request_id" || f.Value != "abc" {
		t.Errorf("RequestID() = %+v", f)
	}
	if f := URL("http://x"); f.Key != "url" || f.Value != "http://x" {
		t.Errorf("URL() = %+v", f)
	}
}
