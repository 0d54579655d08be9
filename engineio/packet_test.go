package engineio

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPacket_Encode verifies the type byte is prepended to the payload.
func TestPacket_Encode(t *testing.T) {
	p := &Packet{Type: PacketTypeMessage, Data: []byte(`2["ping"]`)}
	assert.Equal(t, `42["ping"]`, string(p.Encode()))

	empty := &Packet{Type: PacketTypePing}
	assert.Equal(t, "2", string(empty.Encode()))
}

// TestDecodePacket covers valid packets, empty input and unknown types.
func TestDecodePacket(t *testing.T) {
	p, err := DecodePacket([]byte(`40{"sid":"abc"}`))
	require.NoError(t, err)
	assert.Equal(t, PacketTypeMessage, p.Type)
	assert.Equal(t, `0{"sid":"abc"}`, string(p.Data))

	p, err = DecodePacket([]byte("3"))
	require.NoError(t, err)
	assert.Equal(t, PacketTypePong, p.Type)
	assert.Empty(t, p.Data)

	_, err = DecodePacket(nil)
	assert.Error(t, err)

	_, err = DecodePacket([]byte("9"))
	assert.Error(t, err)
}

// TestEncodeHandshake checks the open packet carries the session parameters.
func TestEncodeHandshake(t *testing.T) {
	raw, err := EncodeHandshake("sid-1", 25000, 20000, 1e6)
	require.NoError(t, err)
	require.Equal(t, byte('0'), raw[0])

	var hs HandshakeData
	require.NoError(t, json.Unmarshal(raw[1:], &hs))
	assert.Equal(t, "sid-1", hs.SID)
	assert.Equal(t, 25000, hs.PingInterval)
	assert.Equal(t, 20000, hs.PingTimeout)
	assert.Equal(t, 1000000, hs.MaxPayload)
	assert.Empty(t, hs.Upgrades)
}

func TestPacketType_String(t *testing.T) {
	assert.Equal(t, "open", PacketTypeOpen.String())
	assert.Equal(t, "message", PacketTypeMessage.String())
	assert.Equal(t, "unknown(9)", PacketType(9).String())
}
