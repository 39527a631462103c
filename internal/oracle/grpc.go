package oracle

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region wire
// The inference service speaks a single unary method whose request and
// response are google.protobuf.Struct values:
//
//	request:  {prompt, system, max_tokens, temperature}
//	response: {text}
const (
	serviceName    = "t13.mirror.v1.Oracle"
	generateMethod = "/" + serviceName + "/Generate"
)

// #endregion wire

// #region client-struct
// GRPCClient wraps the gRPC connection to an inference service.
type GRPCClient struct {
	conn        *grpc.ClientConn
	cc          grpc.ClientConnInterface
	system      string
	maxTokens   int
	temperature float64
}

// GRPCOptions carries the generation parameters forwarded with every prompt.
type GRPCOptions struct {
	System      string
	MaxTokens   int
	Temperature float64
}

// #endregion client-struct

// #region constructor
// NewGRPCClient connects to the inference gRPC server at addr.
func NewGRPCClient(addr string, opts GRPCOptions) (*GRPCClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	c := NewGRPCClientWithConn(conn, opts)
	c.conn = conn
	return c, nil
}

// NewGRPCClientWithConn creates a GRPCClient over an existing connection.
// Used for testing without a real network listener.
func NewGRPCClientWithConn(cc grpc.ClientConnInterface, opts GRPCOptions) *GRPCClient {
	return &GRPCClient{
		cc:          cc,
		system:      opts.System,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
	}
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection if this client owns it.
func (c *GRPCClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region generate
// Generate sends the prompt to the inference service.
func (c *GRPCClient) Generate(ctx context.Context, prompt string) (string, error) {
	req, err := structpb.NewStruct(map[string]any{
		"prompt":      prompt,
		"system":      c.system,
		"max_tokens":  c.maxTokens,
		"temperature": c.temperature,
	})
	if err != nil {
		return "", Wrap("grpc", fmt.Errorf("encode request: %w", err))
	}

	resp := &structpb.Struct{}
	if err := c.cc.Invoke(ctx, generateMethod, req, resp); err != nil {
		return "", Wrap("grpc", fmt.Errorf("generate rpc: %w", err))
	}

	text, ok := resp.GetFields()["text"]
	if !ok {
		return "", Wrap("grpc", errors.New("generate rpc: response has no text field"))
	}
	return text.GetStringValue(), nil
}

// #endregion generate

// #region server
// RegisterServer exposes o on s under the method GRPCClient calls, so any
// Oracle (a local model wrapper, a scripted fake) can serve sweeps remotely.
func RegisterServer(s grpc.ServiceRegistrar, o Oracle) {
	s.RegisterService(&oracleServiceDesc, o)
}

var oracleServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*Oracle)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Generate", Handler: generateHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "oracle",
}

func generateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	handle := func(ctx context.Context, req any) (any, error) {
		prompt := req.(*structpb.Struct).GetFields()["prompt"].GetStringValue()
		reply, err := srv.(Oracle).Generate(ctx, prompt)
		if err != nil {
			return nil, status.Error(codes.Unavailable, err.Error())
		}
		return structpb.NewStruct(map[string]any{"text": reply})
	}
	if interceptor == nil {
		return handle(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: generateMethod}
	return interceptor(ctx, in, info, handle)
}

// #endregion server
