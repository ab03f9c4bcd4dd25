package logging

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const sampleTraceparent = "00-3d23d071b5bfd6579171efce907685cb-08f067aa0ba902b7-01"

func fieldMap(entry observer.LoggedEntry) map[string]zap.Field {
	fields := map[string]zap.Field{}
	for _, f := range entry.Context {
		fields[f.Key] = f
	}
	return fields
}

func TestAccessLoggerRecordsImplicitOK(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	access := AccessLogger()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<p>ok</p>"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	req = req.WithContext(WithLogger(req.Context(), zap.New(core)))
	access.ServeHTTP(httptest.NewRecorder(), req)

	entries := recorded.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if entries[0].Message != "request completed" || entries[0].Level != zapcore.InfoLevel {
		t.Fatalf("unexpected entry: %s at %v", entries[0].Message, entries[0].Level)
	}
	fields := fieldMap(entries[0])
	if f := fields["status"]; f.Integer != http.StatusOK {
		t.Errorf("expected status 200, got %+v", f)
	}
	if f := fields["bytes"]; f.Integer != int64(len("<p>ok</p>")) {
		t.Errorf("unexpected bytes field: %+v", f)
	}
	if f := fields["contentType"]; f.String != "text/html" {
		t.Errorf("unexpected contentType field: %+v", f)
	}
	if _, ok := fields["duration"]; !ok {
		t.Error("expected duration field")
	}
}

func TestAccessLoggerLevelFollowsStatus(t *testing.T) {
	tests := []struct {
		status int
		want   zapcore.Level
	}{
		{http.StatusOK, zapcore.InfoLevel},
		{http.StatusMovedPermanently, zapcore.InfoLevel},
		{http.StatusNotFound, zapcore.WarnLevel},
		{http.StatusTooManyRequests, zapcore.WarnLevel},
		{http.StatusInternalServerError, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		core, recorded := observer.New(zapcore.DebugLevel)
		access := AccessLogger()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		access.ServeHTTP(httptest.NewRecorder(), req.WithContext(WithLogger(req.Context(), zap.New(core))))

		entries := recorded.All()
		if len(entries) != 1 || entries[0].Level != tt.want {
			t.Errorf("status %d: expected one %v entry, got %+v", tt.status, tt.want, entries)
		}
	}
}

func TestAccessLoggerHandlerWithoutWrite(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	access := AccessLogger()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	req := httptest.NewRequest(http.MethodHead, "/", nil)
	access.ServeHTTP(httptest.NewRecorder(), req.WithContext(WithLogger(req.Context(), zap.New(core))))

	if f := fieldMap(recorded.All()[0])["status"]; f.Integer != http.StatusOK {
		t.Fatalf("expected implicit 200, got %+v", f)
	}
}

func TestRequestLoggerTagsRequestAndTrace(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	h := RequestLogger("test-project")(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		LogInfo(r.Context(), "inside")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("traceparent", sampleTraceparent)
	ctx := context.WithValue(req.Context(), chimiddleware.RequestIDKey, "req-42")
	h.ServeHTTP(httptest.NewRecorder(), req.WithContext(WithLogger(ctx, zap.New(core))))

	entries := recorded.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := fieldMap(entries[0])
	if f := fields["requestId"]; f.String != "req-42" {
		t.Errorf("expected requestId req-42, got %+v", f)
	}
	if f := fields["logging.googleapis.com/trace"]; f.String != "projects/test-project/traces/3d23d071b5bfd6579171efce907685cb" {
		t.Errorf("unexpected trace field: %+v", f)
	}
}

func TestRequestFields(t *testing.T) {
	fields := requestFields(sampleTraceparent, "test-project", "req-123")
	if len(fields) != 2 {
		t.Fatalf("expected trace and requestId fields, got %v", fields)
	}
	if fields[0].Key != "logging.googleapis.com/trace" ||
		fields[0].String != "projects/test-project/traces/3d23d071b5bfd6579171efce907685cb" {
		t.Errorf("unexpected trace field: %+v", fields[0])
	}
	if fields[1].Key != "requestId" || fields[1].String != "req-123" {
		t.Errorf("unexpected requestId field: %+v", fields[1])
	}

	if fields := requestFields(sampleTraceparent, "", "req-123"); len(fields) != 1 {
		t.Errorf("expected only requestId without a project, got %v", fields)
	}
	if fields := requestFields("", "", ""); fields != nil {
		t.Errorf("expected no fields, got %v", fields)
	}
}

func TestTraceIDFrom(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid", sampleTraceparent, "3d23d071b5bfd6579171efce907685cb"},
		{"upper case", "00-3D23D071B5BFD6579171EFCE907685CB-08F067AA0BA902B7-00", "3d23d071b5bfd6579171efce907685cb"},
		{"garbage", "invalid", ""},
		{"empty", "", ""},
		{"short trace id", "00-3d23d071-08f067aa0ba902b7-01", ""},
		{"forbidden version", "ff-3d23d071b5bfd6579171efce907685cb-08f067aa0ba902b7-01", ""},
		{"zero trace id", "00-00000000000000000000000000000000-08f067aa0ba902b7-01", ""},
		{"zero parent id", "00-3d23d071b5bfd6579171efce907685cb-0000000000000000-01", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := traceIDFrom(tt.header); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestLoggerFromContextFallsBack(t *testing.T) {
	if LoggerFromContext(context.Background()) != Logger() {
		t.Fatal("expected process logger for empty context")
	}
}

func TestLogHelpers(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := WithLogger(context.Background(), zap.New(core))

	LogError(ctx, "write failed", errors.New("broken pipe"))
	LogWarn(ctx, "slow")
	LogInfo(ctx, "fine", zap.String("k", "v"))

	entries := recorded.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if f, ok := fieldMap(entries[0])["error"]; !ok || f.Interface.(error).Error() != "broken pipe" {
		t.Fatalf("expected error field, got %+v", entries[0].Context)
	}
	if entries[1].Level != zapcore.WarnLevel {
		t.Fatalf("expected warn level, got %v", entries[1].Level)
	}
	if fieldMap(entries[2])["k"].String != "v" {
		t.Fatalf("expected k=v field, got %+v", entries[2].Context)
	}
}
