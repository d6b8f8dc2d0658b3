// Package transport implements the cross-rank wire protocol: a
// fixed-width, little-endian header followed by a run of fixed-width
// event records. A generic RPC/serialization library was considered and
// rejected for this piece (see DESIGN.md): the byte order and integer
// widths here are exact and fixed, so hand-rolling the layout with
// encoding/binary expresses it directly instead of fighting a generic
// envelope around it.
package transport

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/distsim/syncore/syncore/activity"
)

// Header is the per-epoch, per-peer message header.
type Header struct {
	SenderRank    int32
	EpochID       uint64
	NextEventTime activity.SimTime
	EventCount    uint32
}

// WireEvent is one encoded event record.
type WireEvent struct {
	LinkID       activity.LinkID
	DeliveryTime activity.SimTime
	Priority     int32
	Payload      []byte
}

// EncodeMessage writes hdr followed by events to w, little-endian, with
// fixed integer widths.
func EncodeMessage(w io.Writer, hdr Header, events []WireEvent) error {
	hdr.EventCount = uint32(len(events))

	if err := writeFields(w,
		hdr.SenderRank, hdr.EpochID, int64(hdr.NextEventTime), hdr.EventCount,
	); err != nil {
		return fmt.Errorf("transport: encode header: %w", err)
	}

	for i, e := range events {
		if err := writeFields(w,
			uint64(e.LinkID), int64(e.DeliveryTime), e.Priority, uint32(len(e.Payload)),
		); err != nil {
			return fmt.Errorf("transport: encode event %d header: %w", i, err)
		}
		if len(e.Payload) > 0 {
			if _, err := w.Write(e.Payload); err != nil {
				return fmt.Errorf("transport: encode event %d payload: %w", i, err)
			}
		}
	}

	return nil
}

// DecodeMessage reads one message written by EncodeMessage from r.
func DecodeMessage(r io.Reader) (Header, []WireEvent, error) {
	var hdr Header
	var epochID uint64
	var nextEventTime int64
	var eventCount uint32

	if err := readFields(r, &hdr.SenderRank, &epochID, &nextEventTime, &eventCount); err != nil {
		return Header{}, nil, fmt.Errorf("transport: decode header: %w", err)
	}
	hdr.EpochID = epochID
	hdr.NextEventTime = activity.SimTime(nextEventTime)
	hdr.EventCount = eventCount

	events := make([]WireEvent, eventCount)
	for i := range events {
		var linkID uint64
		var deliveryTime int64
		var priority int32
		var payloadLen uint32

		if err := readFields(r, &linkID, &deliveryTime, &priority, &payloadLen); err != nil {
			return Header{}, nil, fmt.Errorf("transport: decode event %d header: %w", i, err)
		}

		var payload []byte
		if payloadLen > 0 {
			payload = make([]byte, payloadLen)
			if _, err := io.ReadFull(r, payload); err != nil {
				return Header{}, nil, fmt.Errorf("transport: decode event %d payload: %w", i, err)
			}
		}

		events[i] = WireEvent{
			LinkID:       activity.LinkID(linkID),
			DeliveryTime: activity.SimTime(deliveryTime),
			Priority:     priority,
			Payload:      payload,
		}
	}

	return hdr, events, nil
}

func writeFields(w io.Writer, fields ...interface{}) error {
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return nil
}

func readFields(r io.Reader, fields ...interface{}) error {
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return nil
}
