package action

import (
	"context"
	"net/http"
)

// Protocol is the closed set of action protocols.
type Protocol string

const (
	ProtocolHTTP      Protocol = "http"
	ProtocolHTTP2     Protocol = "http2"
	ProtocolHTTP3     Protocol = "http3"
	ProtocolGRPC      Protocol = "grpc"
	ProtocolGraphQL   Protocol = "graphql"
	ProtocolWebsocket Protocol = "websocket"
	ProtocolUDP       Protocol = "udp"
	ProtocolTask      Protocol = "task"
)

// Hook is a before/after/check callback attached to an action.
type Hook func(ctx context.Context, a *Action, r *Result) error

// Action is the protocol-agnostic unit the executor drives. Concrete
// protocol adapters read Method/Headers/Payload as they see fit;
// fields unused by a given protocol are left zero.
type Action struct {
	Name     string
	Protocol Protocol
	Stage    string

	URL     string
	Method  string
	Headers http.Header
	Payload []byte

	// ConnTarget is an optional resolved connection target carried with
	// the action. The executor and the bundled clients neither set nor
	// read it.
	ConnTarget string

	Before []Hook
	After  []Hook
	Checks []Hook

	Setup bool

	Weight int
	Order  int
}

// Clone returns a shallow copy suitable for re-running setup after a
// Before hook mutates the action.
func (a *Action) Clone() *Action {
	cp := *a
	return &cp
}
