package raft

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// MessageType is the one-byte tag that dispatches a decoded wire
// message, per spec.md §6: "message types dispatched by a short tag."
type MessageType byte

const (
	MsgVoteRequest    MessageType = 1
	MsgVoteResponse   MessageType = 2
	MsgAppendEntries  MessageType = 3
	MsgAppendResponse MessageType = 4
)

// Message is the bidirectional wire record exchanged over both the UDP
// control channel (vote request/response, membership gossip) and the
// TCP log channel (append_entries), matching spec.md §6's field set
// exactly.
type Message struct {
	Type MessageType

	Host string
	Port int

	SourceHost string
	SourcePort int

	Term           Term
	ElectionStatus ElectionState
	NodeStatus     NodeState

	Entries []LogEntry

	Error string

	// ElectedLeader is the zero Member when unset; a zero value is
	// treated as "no change" by Controller.updateLogs, per the spec's
	// explicit None-as-no-change instruction (open question #3).
	ElectedLeader Member
}

// Encode serializes m into a length-prefixed binary frame: a uint32
// total-length header followed by the tag byte and fields, so both the
// UDP datagram and TCP stream framings share one wire format.
func Encode(m *Message) ([]byte, error) {
	var body bytes.Buffer
	body.WriteByte(byte(m.Type))

	writeString(&body, m.Host)
	writeUint32(&body, uint32(m.Port))
	writeString(&body, m.SourceHost)
	writeUint32(&body, uint32(m.SourcePort))
	writeUint64(&body, uint64(m.Term))
	writeString(&body, string(m.ElectionStatus))
	writeString(&body, string(m.NodeStatus))
	writeString(&body, m.Error)
	writeString(&body, m.ElectedLeader.Host)
	writeUint32(&body, uint32(m.ElectedLeader.Port))

	writeUint32(&body, uint32(len(m.Entries)))
	for _, e := range m.Entries {
		writeUint64(&body, e.EntryID)
		writeUint64(&body, uint64(e.Term))
		writeUint32(&body, uint32(len(e.Payload)))
		body.Write(e.Payload)
	}

	framed := make([]byte, 4+body.Len())
	binary.BigEndian.PutUint32(framed, uint32(body.Len()))
	copy(framed[4:], body.Bytes())
	return framed, nil
}

// Decode parses a Message from a buffer produced by Encode, excluding
// the 4-byte length header (the caller is responsible for framing: a
// length-prefixed read on TCP, or the full datagram payload on UDP).
func Decode(buf []byte) (*Message, error) {
	r := bytes.NewReader(buf)

	typeByte, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("raft: decode message type: %w", err)
	}

	m := &Message{Type: MessageType(typeByte)}

	if m.Host, err = readString(r); err != nil {
		return nil, err
	}
	port, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	m.Port = int(port)

	if m.SourceHost, err = readString(r); err != nil {
		return nil, err
	}
	sourcePort, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	m.SourcePort = int(sourcePort)

	term, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	m.Term = Term(term)

	electionStatus, err := readString(r)
	if err != nil {
		return nil, err
	}
	m.ElectionStatus = ElectionState(electionStatus)

	nodeStatus, err := readString(r)
	if err != nil {
		return nil, err
	}
	m.NodeStatus = NodeState(nodeStatus)

	if m.Error, err = readString(r); err != nil {
		return nil, err
	}

	if m.ElectedLeader.Host, err = readString(r); err != nil {
		return nil, err
	}
	leaderPort, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	m.ElectedLeader.Port = int(leaderPort)

	entryCount, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	m.Entries = make([]LogEntry, 0, entryCount)
	for i := uint32(0); i < entryCount; i++ {
		entryID, err := readUint64(r)
		if err != nil {
			return nil, err
		}
		entryTerm, err := readUint64(r)
		if err != nil {
			return nil, err
		}
		payloadLen, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		payload := make([]byte, payloadLen)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, fmt.Errorf("raft: decode entry payload: %w", err)
		}
		m.Entries = append(m.Entries, LogEntry{EntryID: entryID, Term: Term(entryTerm), Payload: payload})
	}

	return m, nil
}

// ReadFramed reads one length-prefixed frame from r (the TCP log
// channel's framing convention, adapted from gRPC's own length-prefix
// framing since gRPC's framing itself is reserved for the gRPC
// ActionClient).
func ReadFramed(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeString(buf *bytes.Buffer, s string) {
	writeUint32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("raft: decode string: %w", err)
	}
	return string(buf), nil
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("raft: decode uint32: %w", err)
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func readUint64(r *bytes.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("raft: decode uint64: %w", err)
	}
	return binary.BigEndian.Uint64(b[:]), nil
}
