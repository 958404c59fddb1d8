package action

import (
	"context"
	"fmt"
	"net"
	"time"
)

// UDPClient is the fire-and-forget UDP ActionClient: one action is one
// datagram write, shaped after provider.Sink[I] rather than
// provider.RequestResponse[I,O] since UDP gives no delivery
// acknowledgement at the transport level. Action.URL carries the
// "host:port" destination. This is the same net.UDPConn primitive
// raft's control channel (raft/transport_net.go) uses for its own
// RequestVote/VoteResponse datagrams, applied here to user actions
// instead of cluster RPCs.
type UDPClient struct {
	readTimeout time.Duration
}

// NewUDPClient builds a UDPClient. readTimeout bounds how long
// ExecutePrepared waits for a reply datagram before treating the send
// as complete with no response (readTimeout <= 0 disables the read
// entirely, matching pure fire-and-forget semantics).
func NewUDPClient(readTimeout time.Duration) *UDPClient {
	return &UDPClient{readTimeout: readTimeout}
}

func (c *UDPClient) Prepare(ctx context.Context, a *Action) (*Action, error) {
	prepared := a.Clone()
	if prepared.URL == "" {
		return nil, fmt.Errorf("action: udp action %q missing destination URL", a.Name)
	}
	return prepared, nil
}

type udpConn struct {
	conn *net.UDPConn
}

func (c *udpConn) Reset(ctx context.Context) error { return nil }
func (c *udpConn) Close() error                    { return c.conn.Close() }

func (c *UDPClient) Dial(ctx context.Context, a *Action) (Conn, error) {
	addr, err := net.ResolveUDPAddr("udp", a.URL)
	if err != nil {
		return nil, fmt.Errorf("action: resolve udp addr %s: %w", a.URL, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("action: dial udp %s: %w", a.URL, err)
	}
	return &udpConn{conn: conn}, nil
}

func (c *UDPClient) ExecutePrepared(ctx context.Context, a *Action, conn Conn) (*Result, error) {
	r := &Result{ActionName: a.Name}
	uc, ok := conn.(*udpConn)
	if !ok {
		return r, fmt.Errorf("action: udp adapter received foreign conn type %T", conn)
	}

	connectEnd := time.Now()
	r.ConnectEnd = &connectEnd

	if _, err := uc.conn.Write(a.Payload); err != nil {
		writeEnd := time.Now()
		r.WriteEnd = &writeEnd
		return r, fmt.Errorf("action: udp write: %w", err)
	}
	writeEnd := time.Now()
	r.WriteEnd = &writeEnd

	if c.readTimeout <= 0 {
		readEnd := time.Now()
		r.ReadEnd = &readEnd
		r.Status = 0
		return r, nil
	}

	buf := make([]byte, 65507)
	_ = uc.conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	n, err := uc.conn.Read(buf)
	readEnd := time.Now()
	r.ReadEnd = &readEnd
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return r, nil
		}
		return r, fmt.Errorf("action: udp read: %w", err)
	}
	r.Body = buf[:n]
	return r, nil
}

func (c *UDPClient) Close() error { return nil }

var _ Client = (*UDPClient)(nil)
