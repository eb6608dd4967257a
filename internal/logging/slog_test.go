package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func newBufLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newBufLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "at-debug", "n", 1)
	log.Info(ctx, "at-info", "n", 2)
	log.Warn(ctx, "at-warn", "n", 3)
	log.Error(ctx, "at-error", "n", 4)

	out := buf.String()
	for _, want := range []string{
		"level=DEBUG", "msg=at-debug", "n=1",
		"level=INFO", "msg=at-info", "n=2",
		"level=WARN", "msg=at-warn", "n=3",
		"level=ERROR", "msg=at-error", "n=4",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestSlogLogger_WithCarriesAttrs(t *testing.T) {
	log, buf := newBufLogger(t)

	child := log.With("module", "files")
	child.Info(context.Background(), "upload accepted", "file_id", "f1")

	out := buf.String()
	for _, want := range []string{"module=files", "msg=\"upload accepted\"", "file_id=f1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestSlogLogger_WithDoesNotMutateParent(t *testing.T) {
	log, buf := newBufLogger(t)

	_ = log.With("module", "shares")
	log.Info(context.Background(), "plain")

	if strings.Contains(buf.String(), "module=shares") {
		t.Fatalf("parent logger picked up child attrs:\n%s", buf.String())
	}
}
