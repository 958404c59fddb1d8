package action

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/keepalive"

	grpccfg "github.com/mercurysync/graphrunner/grpc"
)

// rawCodec passes Action.Payload through as the wire bytes of a unary
// call, letting GRPCClient invoke arbitrary methods without a compiled
// proto service — the generic equivalent of grpcurl's codec. Registered
// under a name distinct from "proto" so it never shadows normal gRPC
// traffic elsewhere in the process.
type rawCodec struct{}

func (rawCodec) Name() string { return "graphrunner-raw" }

func (rawCodec) Marshal(v any) ([]byte, error) {
	b, ok := v.(*[]byte)
	if !ok {
		return nil, fmt.Errorf("action: grpc raw codec expects *[]byte, got %T", v)
	}
	return *b, nil
}

func (rawCodec) Unmarshal(data []byte, v any) error {
	b, ok := v.(*[]byte)
	if !ok {
		return fmt.Errorf("action: grpc raw codec expects *[]byte, got %T", v)
	}
	*b = append((*b)[:0], data...)
	return nil
}

func init() {
	encoding.RegisterCodec(rawCodec{})
}

// GRPCClient is the gRPC unary-call ActionClient, adapted from
// grpc/client/client.go's buildDialOptions/keepalive pattern. Action.URL
// carries the dial target (host:port) and Action.Method the full RPC
// method path ("/pkg.Service/Method"); Action.Payload is the raw
// marshaled request passed through rawCodec.
type GRPCClient struct {
	cfg grpccfg.Config
}

// NewGRPCClient builds a GRPCClient from a gRPC dial config. Host/Port
// on cfg are overridden per-action by Action.URL when set.
func NewGRPCClient(cfg grpccfg.Config) *GRPCClient {
	cfg.ApplyDefaults()
	return &GRPCClient{cfg: cfg}
}

func (c *GRPCClient) Prepare(ctx context.Context, a *Action) (*Action, error) {
	prepared := a.Clone()
	if prepared.Method == "" {
		return nil, fmt.Errorf("action: grpc action %q missing method path", a.Name)
	}
	return prepared, nil
}

type grpcConn struct {
	cc *grpc.ClientConn
}

// Reset is a no-op: grpc.ClientConn already reconnects transparently on
// the next call after a transient failure.
func (g *grpcConn) Reset(ctx context.Context) error { return nil }

func (g *grpcConn) Close() error { return g.cc.Close() }

func (c *GRPCClient) Dial(ctx context.Context, a *Action) (Conn, error) {
	target := a.URL
	if target == "" {
		target = c.cfg.Address()
	}

	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                c.cfg.Keepalive.Time,
			Timeout:             c.cfg.Keepalive.Timeout,
			PermitWithoutStream: c.cfg.Keepalive.PermitWithoutStream,
		}),
		grpc.WithDefaultCallOptions(
			grpc.CallContentSubtype(rawCodec{}.Name()),
			grpc.MaxCallRecvMsgSize(c.cfg.MaxRecvMsgSize),
			grpc.MaxCallSendMsgSize(c.cfg.MaxSendMsgSize),
		),
	}

	cc, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("action: grpc dial %s: %w", target, err)
	}
	return &grpcConn{cc: cc}, nil
}

func (c *GRPCClient) ExecutePrepared(ctx context.Context, a *Action, conn Conn) (*Result, error) {
	r := &Result{ActionName: a.Name}
	gc, ok := conn.(*grpcConn)
	if !ok {
		return r, fmt.Errorf("action: grpc adapter received foreign conn type %T", conn)
	}

	callCtx := ctx
	if c.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.cfg.CallTimeout)
		defer cancel()
	}

	connectEnd := time.Now()
	r.ConnectEnd = &connectEnd

	req := append([]byte(nil), a.Payload...)
	writeEnd := time.Now()
	r.WriteEnd = &writeEnd

	var reply []byte
	err := gc.cc.Invoke(callCtx, a.Method, &req, &reply)
	readEnd := time.Now()
	r.ReadEnd = &readEnd
	if err != nil {
		return r, err
	}
	r.Status = 0
	r.Body = reply
	return r, nil
}

func (c *GRPCClient) Close() error { return nil }

var _ Client = (*GRPCClient)(nil)
