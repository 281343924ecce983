package grpcclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestRetryOnlyTransientCodes(t *testing.T) {
	calls := 0
	invoker := func(_ context.Context, _ string, _, _ any, _ *grpc.ClientConn, _ ...grpc.CallOption) error {
		calls++
		if calls < 3 {
			return status.Error(codes.Unavailable, "down")
		}
		return nil
	}
	icpt := unaryClientInterceptor(ClientConfig{MaxRetries: 3})
	require.NoError(t, icpt(context.Background(), "/x/Y", nil, nil, nil, invoker))
	assert.Equal(t, 3, calls)

	calls = 0
	notFound := func(_ context.Context, _ string, _, _ any, _ *grpc.ClientConn, _ ...grpc.CallOption) error {
		calls++
		return status.Error(codes.NotFound, "nope")
	}
	err := icpt(context.Background(), "/x/Y", nil, nil, nil, notFound)
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Equal(t, 1, calls)
}

func TestWithToken(t *testing.T) {
	ctx := WithToken(context.Background(), "abc")
	md, ok := metadata.FromOutgoingContext(ctx)
	require.True(t, ok)
	assert.Equal(t, []string{"Bearer abc"}, md.Get("authorization"))
}
