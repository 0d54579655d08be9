package sockio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPacket_Encode covers namespaces, ack IDs and data encoding.
func TestPacket_Encode(t *testing.T) {
	tests := []struct {
		name   string
		packet Packet
		want   string
	}{
		{
			name:   "event default namespace",
			packet: Packet{Type: PacketTypeEvent, Namespace: "/", Data: []interface{}{"ping", 42}},
			want:   `2["ping",42]`,
		},
		{
			name:   "event custom namespace",
			packet: Packet{Type: PacketTypeEvent, Namespace: "/chat", Data: []interface{}{"msg", "hi"}},
			want:   `2/chat,["msg","hi"]`,
		},
		{
			name:   "connect with sid",
			packet: Packet{Type: PacketTypeConnect, Namespace: "/", Data: map[string]interface{}{"sid": "s1"}},
			want:   `0{"sid":"s1"}`,
		},
		{
			name:   "disconnect without data",
			packet: Packet{Type: PacketTypeDisconnect, Namespace: "/"},
			want:   "1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.packet.Encode()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestPacket_Encode_AckID verifies the ack ID sits between namespace and data.
func TestPacket_Encode_AckID(t *testing.T) {
	id := 7
	p := Packet{Type: PacketTypeAck, Namespace: "/", Data: []interface{}{"ok"}, ID: &id}
	got, err := p.Encode()
	require.NoError(t, err)
	assert.Equal(t, `37["ok"]`, got)
}

// TestDecodePacket checks round trips of the interesting shapes.
func TestDecodePacket(t *testing.T) {
	p, err := DecodePacket(`2["ping",42]`)
	require.NoError(t, err)
	assert.Equal(t, PacketTypeEvent, p.Type)
	assert.Equal(t, "/", p.Namespace)
	assert.Equal(t, []interface{}{"ping", float64(42)}, p.Data)
	assert.Nil(t, p.ID)

	p, err = DecodePacket(`2/chat,5["msg","hi"]`)
	require.NoError(t, err)
	assert.Equal(t, "/chat", p.Namespace)
	require.NotNil(t, p.ID)
	assert.Equal(t, 5, *p.ID)
	assert.Equal(t, []interface{}{"msg", "hi"}, p.Data)

	p, err = DecodePacket("0")
	require.NoError(t, err)
	assert.Equal(t, PacketTypeConnect, p.Type)

	// Namespace without trailing data
	p, err = DecodePacket("1/admin")
	require.NoError(t, err)
	assert.Equal(t, PacketTypeDisconnect, p.Type)
	assert.Equal(t, "/admin", p.Namespace)
}

func TestDecodePacket_Invalid(t *testing.T) {
	_, err := DecodePacket("")
	assert.Error(t, err)

	_, err = DecodePacket("9")
	assert.Error(t, err)

	_, err = DecodePacket(`2[not json`)
	assert.Error(t, err)
}

func TestPacketType_String(t *testing.T) {
	assert.Equal(t, "event", PacketTypeEvent.String())
	assert.Equal(t, "ack", PacketTypeAck.String())
	assert.Equal(t, "unknown", PacketType(42).String())
}
