package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestTestLoggerCapturesFields(t *testing.T) {
	logger, buffer := NewTestLogger(LevelDebug)

	logger.Info("fit complete", SamplesKey, 100, FeaturesKey, 3)

	got := buffer.String()
	for _, want := range []string{"INFO: fit complete", "data.samples=100", "data.features=3"} {
		if !bytes.Contains([]byte(got), []byte(want)) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
}

func TestTestLoggerLevelFiltering(t *testing.T) {
	logger, buffer := NewTestLogger(LevelWarn)

	logger.Debug("dropped")
	logger.Info("dropped too")
	logger.Warn("kept")

	got := buffer.String()
	if bytes.Contains([]byte(got), []byte("dropped")) {
		t.Errorf("low-severity records leaked: %q", got)
	}
	if !bytes.Contains([]byte(got), []byte("WARN: kept")) {
		t.Errorf("warn record missing: %q", got)
	}
}

func TestTestLoggerWith(t *testing.T) {
	logger, buffer := NewTestLogger(LevelInfo)

	scoped := logger.With(ModelNameKey, "LinearRegression")
	scoped.Info("training started", OperationKey, "fit")

	got := buffer.String()
	if !bytes.Contains([]byte(got), []byte("model.name=LinearRegression")) {
		t.Errorf("contextual field missing: %q", got)
	}
	if !bytes.Contains([]byte(got), []byte("ml.operation=fit")) {
		t.Errorf("call-site field missing: %q", got)
	}
}

func TestErrFmtHandlerAddsStacktrace(t *testing.T) {
	var buf bytes.Buffer
	handler := WrapByErrFmtHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{}))
	logger := slog.New(handler)

	err := errors.New("query failed")
	logger.Error("extraction failed", ErrAttr(err))

	var record map[string]any
	if jsonErr := json.Unmarshal(buf.Bytes(), &record); jsonErr != nil {
		t.Fatalf("output is not JSON: %v", jsonErr)
	}
	if _, ok := record[StacktraceAttrKey]; !ok {
		t.Errorf("record missing %q attribute: %v", StacktraceAttrKey, record)
	}
}

func TestEnabled(t *testing.T) {
	logger, _ := NewTestLogger(LevelInfo)

	if logger.Enabled(context.Background(), LevelDebug) {
		t.Error("debug should be disabled at info level")
	}
	if !logger.Enabled(context.Background(), LevelError) {
		t.Error("error should be enabled at info level")
	}
}
