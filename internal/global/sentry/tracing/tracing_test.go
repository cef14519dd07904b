package tracing

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestStartSpanWithoutParent(t *testing.T) {
	ctx := context.Background()
	span, got := StartSpan(ctx, "op", "desc")
	require.Nil(t, span)
	require.Equal(t, ctx, got)
	// nil span 的 Finish 不应 panic
	Finish(nil, nil)
}

func TestPipelineDescription(t *testing.T) {
	ctx := context.Background()
	get := redis.NewStringCmd(ctx, "get", "k")
	del := redis.NewIntCmd(ctx, "del", "k")

	require.Equal(t, "PIPELINE (empty)", pipelineDescription(nil))
	require.Equal(t, "PIPELINE: GET", pipelineDescription([]redis.Cmder{get}))
	require.Equal(t, "PIPELINE: GET, DEL, GET...", pipelineDescription([]redis.Cmder{get, del, get, del}))
}
