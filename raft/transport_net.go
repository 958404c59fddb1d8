package raft

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/mercurysync/graphrunner/logger"
)

// NetTransport is the real-network Transport: a UDP control channel
// (net.PacketConn) carries RequestVote/VoteResponse; a TCP log channel (net.Listener + dialed net.Conn) carries
// AppendEntries, length-prefix framed via ReadFramed/Encode.
type NetTransport struct {
	self Member

	udpConn net.PacketConn
	tcpLn   net.Listener

	handler Handler
	log     *logger.Logger

	udpTimeout time.Duration
	tcpTimeout time.Duration

	mu      sync.Mutex
	pending map[uint64]chan *Message
	nextReq uint64

	closeOnce sync.Once
	done      chan struct{}
}

// NewNetTransport binds the UDP control socket and TCP log listener on
// self's host/port and starts serving inbound RPCs against handler.
func NewNetTransport(self Member, handler Handler, log *logger.Logger) (*NetTransport, error) {
	addr := fmt.Sprintf("%s:%d", self.Host, self.Port)

	udpConn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("raft: listen udp %s: %w", addr, err)
	}

	tcpLn, err := net.Listen("tcp", addr)
	if err != nil {
		udpConn.Close()
		return nil, fmt.Errorf("raft: listen tcp %s: %w", addr, err)
	}

	t := &NetTransport{
		self:       self,
		udpConn:    udpConn,
		tcpLn:      tcpLn,
		handler:    handler,
		log:        log.WithComponent("raft.transport"),
		udpTimeout: 2 * time.Second,
		tcpTimeout: 5 * time.Second,
		pending:    make(map[uint64]chan *Message),
		done:       make(chan struct{}),
	}

	go t.serveUDP()
	go t.serveTCP()

	return t, nil
}

func (t *NetTransport) serveUDP() {
	buf := make([]byte, 64*1024)
	for {
		n, addr, err := t.udpConn.ReadFrom(buf)
		if err != nil {
			select {
			case <-t.done:
				return
			default:
				t.log.Debug("udp read error", logger.ErrorFields("udp_read", err))
				continue
			}
		}

		msg, err := Decode(buf[:n])
		if err != nil {
			t.log.Debug("udp decode error", logger.ErrorFields("udp_decode", err))
			continue
		}

		if msg.Type == MsgVoteResponse {
			t.deliverResponse(msg)
			continue
		}

		if msg.Type == MsgVoteRequest {
			resp := t.handler.HandleVoteRequest(context.Background(), msg)
			resp.Type = MsgVoteResponse
			encoded, err := Encode(resp)
			if err != nil {
				continue
			}
			_, _ = t.udpConn.WriteTo(encoded, addr)
		}
	}
}

func (t *NetTransport) serveTCP() {
	for {
		conn, err := t.tcpLn.Accept()
		if err != nil {
			select {
			case <-t.done:
				return
			default:
				t.log.Debug("tcp accept error", logger.ErrorFields("tcp_accept", err))
				continue
			}
		}
		go t.handleTCPConn(conn)
	}
}

func (t *NetTransport) handleTCPConn(conn net.Conn) {
	defer conn.Close()

	frame, err := ReadFramed(conn)
	if err != nil {
		return
	}
	msg, err := Decode(frame)
	if err != nil {
		return
	}

	resp := t.handler.HandleAppendEntries(context.Background(), msg)
	resp.Type = MsgAppendResponse
	encoded, err := Encode(resp)
	if err != nil {
		return
	}
	_, _ = conn.Write(encoded)
}

// RequestVote sends a MsgVoteRequest datagram and waits for the
// matching MsgVoteResponse, bounded by udpTimeout.
func (t *NetTransport) RequestVote(ctx context.Context, to Member, req *Message) (*Message, error) {
	req.Type = MsgVoteRequest
	encoded, err := Encode(req)
	if err != nil {
		return nil, err
	}

	addr, err := net.ResolveUDPAddr("udp", to.String())
	if err != nil {
		return nil, fmt.Errorf("raft: resolve %s: %w", to, err)
	}

	ch := make(chan *Message, 1)
	reqID := t.registerPending(ch)
	defer t.clearPending(reqID)

	if _, err := t.udpConn.WriteTo(encoded, addr); err != nil {
		return nil, err
	}

	timeout := t.udpTimeout
	select {
	case resp := <-ch:
		return resp, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("raft: vote request to %s timed out", to)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *NetTransport) registerPending(ch chan *Message) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextReq++
	id := t.nextReq
	t.pending[id] = ch
	return id
}

func (t *NetTransport) clearPending(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, id)
}

// deliverResponse hands an inbound MsgVoteResponse to one pending
// waiter (whichever the map iteration yields first) and removes that
// waiter; since vote responses do not echo a request id on the wire
// (per spec.md §6's field set), a node with multiple concurrent vote
// requests in flight relies on the first-available waiter, which is
// sufficient for the single-outstanding-election-per-term invariant.
func (t *NetTransport) deliverResponse(msg *Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, ch := range t.pending {
		select {
		case ch <- msg:
		default:
		}
		delete(t.pending, id)
		return
	}
}

// AppendEntries dials a fresh TCP connection, writes one length-prefixed
// frame, and reads the single response frame back.
func (t *NetTransport) AppendEntries(ctx context.Context, to Member, req *Message) (*Message, error) {
	req.Type = MsgAppendEntries

	dialer := net.Dialer{Timeout: t.tcpTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", to.String())
	if err != nil {
		return nil, fmt.Errorf("raft: dial %s: %w", to, err)
	}
	defer conn.Close()

	encoded, err := Encode(req)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Write(encoded); err != nil {
		return nil, err
	}

	_ = conn.SetReadDeadline(time.Now().Add(t.tcpTimeout))
	frame, err := ReadFramed(conn)
	if err != nil {
		return nil, err
	}
	return Decode(frame)
}

// Close shuts down both sockets.
func (t *NetTransport) Close() error {
	t.closeOnce.Do(func() { close(t.done) })
	udpErr := t.udpConn.Close()
	tcpErr := t.tcpLn.Close()
	if udpErr != nil {
		return udpErr
	}
	return tcpErr
}

var _ Transport = (*NetTransport)(nil)
