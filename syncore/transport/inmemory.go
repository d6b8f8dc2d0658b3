package transport

import (
	"bytes"
	"fmt"
)

// InMemoryTransport connects a fixed set of ranks within one process over
// Go channels instead of sockets. It speaks the exact same Header/
// WireEvent vocabulary as TCPTransport, encoding/decoding through the
// same codec, so tests exercise the real wire format without a network.
type InMemoryTransport struct {
	selfRank int
	inboxes  map[int]chan wireMessage
}

type wireMessage struct {
	hdr    Header
	events []WireEvent
}

// NewInMemoryFabric builds one InMemoryTransport per rank in ranks, all
// wired to each other.
func NewInMemoryFabric(ranks []int) map[int]*InMemoryTransport {
	shared := make(map[int]chan wireMessage, len(ranks))
	for _, r := range ranks {
		shared[r] = make(chan wireMessage, 64)
	}

	fabric := make(map[int]*InMemoryTransport, len(ranks))
	for _, r := range ranks {
		fabric[r] = &InMemoryTransport{selfRank: r, inboxes: shared}
	}
	return fabric
}

// Send hands the message directly to peerRank's inbox channel.
func (t *InMemoryTransport) Send(peerRank int, hdr Header, events []WireEvent) error {
	inbox, ok := t.inboxes[peerRank]
	if !ok {
		return fmt.Errorf("transport: unknown peer rank %d", peerRank)
	}

	// Round-trip through the real codec so tests exercise it even though
	// no socket is involved.
	buf := new(bytes.Buffer)
	if err := EncodeMessage(buf, hdr, events); err != nil {
		return err
	}
	decodedHdr, decodedEvents, err := DecodeMessage(buf)
	if err != nil {
		return err
	}

	inbox <- wireMessage{hdr: decodedHdr, events: decodedEvents}
	return nil
}

// Receive blocks for the next message sent to this rank from peerRank.
//
// The simple fabric built by NewInMemoryFabric does not distinguish
// senders on the receive side; it is intended for two-rank tests where
// that distinction is unambiguous. A multi-peer fabric would key inboxes
// by (sender, receiver) instead.
func (t *InMemoryTransport) Receive(peerRank int) (Header, []WireEvent, error) {
	inbox, ok := t.inboxes[t.selfRank]
	if !ok {
		return Header{}, nil, fmt.Errorf("transport: unknown self rank %d", t.selfRank)
	}
	msg := <-inbox
	return msg.hdr, msg.events, nil
}

// Close is a no-op for the in-memory fabric.
func (t *InMemoryTransport) Close() error { return nil }
