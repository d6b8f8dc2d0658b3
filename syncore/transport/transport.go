package transport

import (
	"bufio"
	"fmt"
	"net"
	"sync"
)

// Transport is the message-passing fabric RankSync exchanges events
// over. One Transport instance is shared by every thread of a rank, as
// process-wide state; only the thread performing the exchange (thread 0)
// ever calls Send/Receive.
type Transport interface {
	// Send transmits one encoded message to peerRank.
	Send(peerRank int, hdr Header, events []WireEvent) error

	// Receive blocks until one message has arrived from peerRank and
	// returns it decoded.
	Receive(peerRank int) (Header, []WireEvent, error)

	// Close tears down every peer connection.
	Close() error
}

// TCPTransport is the "serial skip" concrete default: one long-lived TCP
// connection per peer rank, visited in a fixed order each epoch.
type TCPTransport struct {
	mu    sync.Mutex
	peers map[int]*peerConn
}

type peerConn struct {
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
}

// NewTCPTransport creates a transport with no peers attached yet.
func NewTCPTransport() *TCPTransport {
	return &TCPTransport{peers: make(map[int]*peerConn)}
}

// AttachPeer registers an already-established connection to peerRank.
// The engine bootstrap is responsible for dialing/accepting; this
// package only speaks the wire format over whatever net.Conn results.
func (t *TCPTransport) AttachPeer(peerRank int, conn net.Conn) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.peers[peerRank] = &peerConn{
		conn:   conn,
		reader: bufio.NewReader(conn),
		writer: bufio.NewWriter(conn),
	}
}

func (t *TCPTransport) peer(rank int) (*peerConn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.peers[rank]
	if !ok {
		return nil, fmt.Errorf("transport: no connection attached for peer rank %d", rank)
	}
	return p, nil
}

// Send encodes and transmits a message to peerRank.
func (t *TCPTransport) Send(peerRank int, hdr Header, events []WireEvent) error {
	p, err := t.peer(peerRank)
	if err != nil {
		return err
	}

	if err := EncodeMessage(p.writer, hdr, events); err != nil {
		return err
	}
	return p.writer.Flush()
}

// Receive decodes the next message from peerRank, blocking until it
// arrives. There is no timeout: a stuck peer stalls the run.
func (t *TCPTransport) Receive(peerRank int) (Header, []WireEvent, error) {
	p, err := t.peer(peerRank)
	if err != nil {
		return Header{}, nil, err
	}
	return DecodeMessage(p.reader)
}

// Close closes every attached peer connection.
func (t *TCPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var firstErr error
	for rank, p := range t.peers {
		if err := p.conn.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("transport: closing peer rank %d: %w", rank, err)
		}
	}
	return firstErr
}
