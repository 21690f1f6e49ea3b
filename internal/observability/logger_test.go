package observability

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLoggerContext(t *testing.T) {
	t.Parallel()

	require.Same(t, NoopLogger(), FromContext(context.Background()))

	logger := zap.NewExample()
	ctx := WithLogger(context.Background(), logger)
	require.Same(t, logger, FromContext(ctx))

	require.Same(t, NoopLogger(), FromContext(WithLogger(context.Background(), nil)))
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG").Level())
	require.Equal(t, zapcore.InfoLevel, parseLevel("").Level())
	require.Equal(t, zapcore.InfoLevel, parseLevel("loud").Level())
}

func TestCLILoggerVerbosity(t *testing.T) {
	t.Parallel()

	var quiet bytes.Buffer
	NewCLILogger(&quiet, false).Debug("hidden")
	require.Empty(t, quiet.String())

	var verbose bytes.Buffer
	NewCLILogger(&verbose, true).Debug("loaded manifest")
	require.Contains(t, verbose.String(), "DEBUG")
	require.Contains(t, verbose.String(), "loaded manifest")
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/gallery", SanitizeRoute("/gal\nlery"))
	require.Equal(t, "/", SanitizeRoute(""))
	require.Len(t, SanitizeValue(string(bytes.Repeat([]byte("a"), 100))), 64)
}

func TestTraceMiddlewarePassesStatus(t *testing.T) {
	t.Parallel()

	h := TraceMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, TraceID(r), "no SDK is installed so spans are no-ops")
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)
}
