package transport_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distsim/syncore/syncore/activity"
	"github.com/distsim/syncore/syncore/transport"
)

// serialize+deserialize of any Event must be the identity.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	hdr := transport.Header{
		SenderRank:    3,
		EpochID:       42,
		NextEventTime: activity.SimTime(1_000_000),
	}
	events := []transport.WireEvent{
		{LinkID: 7, DeliveryTime: 200, Priority: 1, Payload: []byte("abc")},
		{LinkID: 9, DeliveryTime: 205, Priority: 0, Payload: nil},
	}

	buf := new(bytes.Buffer)
	require.NoError(t, transport.EncodeMessage(buf, hdr, events))

	gotHdr, gotEvents, err := transport.DecodeMessage(buf)
	require.NoError(t, err)

	assert.Equal(t, hdr.SenderRank, gotHdr.SenderRank)
	assert.Equal(t, hdr.EpochID, gotHdr.EpochID)
	assert.Equal(t, hdr.NextEventTime, gotHdr.NextEventTime)
	assert.Equal(t, uint32(len(events)), gotHdr.EventCount)
	require.Len(t, gotEvents, 2)
	assert.Equal(t, events[0].LinkID, gotEvents[0].LinkID)
	assert.Equal(t, events[0].DeliveryTime, gotEvents[0].DeliveryTime)
	assert.Equal(t, events[0].Priority, gotEvents[0].Priority)
	assert.Equal(t, events[0].Payload, gotEvents[0].Payload)
	assert.Nil(t, gotEvents[1].Payload)
}

func TestInMemoryFabricDeliversAcrossRanks(t *testing.T) {
	fabric := transport.NewInMemoryFabric([]int{0, 1})

	hdr := transport.Header{SenderRank: 0, NextEventTime: 500}
	events := []transport.WireEvent{{LinkID: 1, DeliveryTime: 200}}

	require.NoError(t, fabric[0].Send(1, hdr, events))

	gotHdr, gotEvents, err := fabric[1].Receive(0)
	require.NoError(t, err)
	assert.Equal(t, int32(0), gotHdr.SenderRank)
	require.Len(t, gotEvents, 1)
	assert.Equal(t, activity.LinkID(1), gotEvents[0].LinkID)
}
