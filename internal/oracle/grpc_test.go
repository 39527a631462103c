package oracle

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region mock
type mockConn struct {
	grpc.ClientConnInterface

	method string
	req    *structpb.Struct
	resp   map[string]any
	err    error
}

func (m *mockConn) Invoke(_ context.Context, method string, args, reply any, _ ...grpc.CallOption) error {
	m.method = method
	m.req = args.(*structpb.Struct)
	if m.err != nil {
		return m.err
	}
	out, err := structpb.NewStruct(m.resp)
	if err != nil {
		return err
	}
	reply.(*structpb.Struct).Fields = out.Fields
	return nil
}

// #endregion mock

// #region client-tests
func TestNewGRPCClient_LazyConnect(t *testing.T) {
	client, err := NewGRPCClient("localhost:0", GRPCOptions{})
	require.NoError(t, err)
	require.NoError(t, client.Close())
}

func TestGRPCGenerate_Success(t *testing.T) {
	conn := &mockConn{resp: map[string]any{"text": "i will remember"}}
	c := NewGRPCClientWithConn(conn, GRPCOptions{System: "sys", MaxTokens: 800, Temperature: 0.5})

	reply, err := c.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "i will remember", reply)

	assert.Equal(t, "/t13.mirror.v1.Oracle/Generate", conn.method)
	fields := conn.req.GetFields()
	assert.Equal(t, "hello", fields["prompt"].GetStringValue())
	assert.Equal(t, "sys", fields["system"].GetStringValue())
	assert.Equal(t, 800.0, fields["max_tokens"].GetNumberValue())
	assert.Equal(t, 0.5, fields["temperature"].GetNumberValue())
}

func TestGRPCGenerate_RPCError(t *testing.T) {
	conn := &mockConn{err: errors.New("connection refused")}
	c := NewGRPCClientWithConn(conn, GRPCOptions{})

	_, err := c.Generate(context.Background(), "hello")
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "grpc", terr.Backend)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestGRPCGenerate_MissingText(t *testing.T) {
	conn := &mockConn{resp: map[string]any{"other": "x"}}
	c := NewGRPCClientWithConn(conn, GRPCOptions{})

	_, err := c.Generate(context.Background(), "hello")
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
}

func TestGRPCClose_NotOwned(t *testing.T) {
	c := NewGRPCClientWithConn(&mockConn{}, GRPCOptions{})
	assert.NoError(t, c.Close())
}

// #endregion client-tests

// #region round-trip-tests
func dialBufconn(t *testing.T, o Oracle) *GRPCClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterServer(srv, o)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewGRPCClientWithConn(conn, GRPCOptions{MaxTokens: 16})
}

func TestGRPC_RoundTrip(t *testing.T) {
	client := dialBufconn(t, Func(func(_ context.Context, prompt string) (string, error) {
		return "echo: " + prompt, nil
	}))

	reply, err := client.Generate(context.Background(), "truth is the echo")
	require.NoError(t, err)
	assert.Equal(t, "echo: truth is the echo", reply)
}

func TestGRPC_RoundTripServerFailure(t *testing.T) {
	client := dialBufconn(t, Func(func(context.Context, string) (string, error) {
		return "", errors.New("quota exhausted")
	}))

	_, err := client.Generate(context.Background(), "x")
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Contains(t, err.Error(), "quota exhausted")
}

// #endregion round-trip-tests
