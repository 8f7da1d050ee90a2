package timer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestTracing(t *testing.T) {
	ctx := WithTracing(context.Background())
	Mark(ctx, "lex")
	Mark(ctx, "parse")
	Mark(ctx, "eval")
	assert.Equal(t, []string{"lex", "parse", "eval"}, Events(ctx))

	core, logs := observer.New(zap.DebugLevel)
	assert.NoError(t, LogTracingInfo(ctx, zap.New(core)))
	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, "====Trace====")
	assert.Contains(t, entries[0].Message, "parse")
}

func TestTracing_Disabled(t *testing.T) {
	ctx := context.Background()
	// no trace attached: everything is a no-op
	Mark(ctx, "lex")
	assert.Nil(t, Events(ctx))
	assert.NoError(t, LogTracingInfo(ctx, zap.NewNop()))

	bad := context.WithValue(ctx, traceKey{}, "not a trace")
	assert.Error(t, LogTracingInfo(bad, zap.NewNop()))
}

func TestTimer(t *testing.T) {
	tm := Start("timer.test")
	tm.Stop()
}
