package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext_DefaultsToSlogDefault(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestWith_DerivesLoggerAndContext(t *testing.T) {
	// --- Arrange ---
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := WithLogger(context.Background(), base)

	// --- Act ---
	derived, logger := With(ctx, "layout", "Main")
	FromContext(derived).Info("from context")
	logger.Info("direct")
	FromContext(ctx).Info("parent")

	// --- Assert ---
	out := buf.String()
	assert.Contains(t, out, `msg="from context" layout=Main`)
	assert.Contains(t, out, "msg=direct layout=Main")
	assert.Contains(t, out, "msg=parent\n")
}
