package asyncapi

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newTestDocument() *Document {
	return NewDocument("Test API", "1.0.0", "Test API", "http://localhost:5000", "BACKEND")
}

// renderTree parses rendered YAML back to a generic tree for structural
// assertions.
func renderTree(t *testing.T, d *Document) map[string]any {
	t.Helper()
	out, err := d.Render()
	require.NoError(t, err)
	var tree map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &tree))
	return tree
}

func dig(t *testing.T, tree map[string]any, path ...string) any {
	t.Helper()
	var cur any = tree
	for _, key := range path {
		m, ok := cur.(map[string]any)
		require.Truef(t, ok, "expected map at %q", key)
		cur, ok = m[key]
		require.Truef(t, ok, "missing key %q", key)
	}
	return cur
}

func TestNewDocument_Defaults(t *testing.T) {
	tree := renderTree(t, newTestDocument())

	assert.Equal(t, "2.5.0", dig(t, tree, "asyncapi"))
	assert.Equal(t, "Test API", dig(t, tree, "info", "title"))
	assert.Contains(t, dig(t, tree, "info", "description"), "x-ack")

	server := dig(t, tree, "servers", "BACKEND").(map[string]any)
	assert.Equal(t, "http://localhost:5000", server["url"])
	assert.Equal(t, "socketio", server["protocol"])
	assert.Equal(t, "5", server["protocolVersion"])

	// Default channel exists with empty lists and the disconnect marker.
	assert.Empty(t, dig(t, tree, "channels", "/", "publish", "message", "oneOf"))
	assert.Empty(t, dig(t, tree, "channels", "/", "subscribe", "message", "oneOf"))
	assert.Equal(t, "disconnect", dig(t, tree, "channels", "/", "x-handlers", "disconnect"))

	assert.Equal(t, "Specification is not provided",
		dig(t, tree, "components", "schemas", "NoSpec", "description"))
}

func TestAddReceiver_RecordModels(t *testing.T) {
	d := newTestDocument()
	d.AddReceiver("", "get_user", "", "Fetch a user.", Record[user](), Record[token]())

	tree := renderTree(t, d)

	// Message keyed by the title-cased event name.
	msg := dig(t, tree, "components", "messages", "Get_User").(map[string]any)
	assert.Equal(t, "get_user", msg["name"])
	assert.Equal(t, "Fetch a user.", msg["description"])
	assert.Equal(t, map[string]any{"$ref": "#/components/schemas/token"}, msg["payload"])
	assert.Equal(t, map[string]any{"$ref": "#/components/schemas/user"}, msg["x-ack"])

	// Both record schemas were registered.
	userSchema := dig(t, tree, "components", "schemas", "user").(map[string]any)
	assert.Equal(t, "object", userSchema["type"])
	props := userSchema["properties"].(map[string]any)
	assert.Contains(t, props, "name")
	assert.Contains(t, props, "id")
	assert.Contains(t, tree["components"].(map[string]any)["schemas"], "token")

	// Publish list references the message.
	oneOf := dig(t, tree, "channels", "/", "publish", "message", "oneOf").([]any)
	require.Len(t, oneOf, 1)
	assert.Equal(t, map[string]any{"$ref": "#/components/messages/Get_User"}, oneOf[0])
}

func TestAddReceiver_NotProvided(t *testing.T) {
	d := newTestDocument()
	d.AddReceiver("", "ping", "", "", NotProvided, NotProvided)

	tree := renderTree(t, d)
	msg := dig(t, tree, "components", "messages", "Ping").(map[string]any)
	assert.Equal(t, map[string]any{"$ref": "#/components/schemas/NoSpec"}, msg["payload"])
	assert.Equal(t, map[string]any{"$ref": "#/components/schemas/NoSpec"}, msg["x-ack"])
}

func TestAddReceiver_NoModels(t *testing.T) {
	d := newTestDocument()
	d.AddReceiver("", "ping", "", "", None, None)

	tree := renderTree(t, d)
	msg := dig(t, tree, "components", "messages", "Ping").(map[string]any)
	_, hasPayload := msg["payload"]
	_, hasAck := msg["x-ack"]
	assert.False(t, hasPayload)
	assert.False(t, hasAck)
}

func TestAddReceiver_CustomMessageName(t *testing.T) {
	d := newTestDocument()
	d.AddReceiver("", "ping", "PingRequest", "", None, Int)

	tree := renderTree(t, d)
	msg := dig(t, tree, "components", "messages", "PingRequest").(map[string]any)
	assert.Equal(t, map[string]any{"type": "integer"}, msg["payload"])
}

func TestAddSender(t *testing.T) {
	d := newTestDocument()
	d.AddSender("", "pong", String, "Reply to ping.")

	tree := renderTree(t, d)

	// Sender messages are keyed by the event name as-is.
	msg := dig(t, tree, "components", "messages", "pong").(map[string]any)
	assert.Equal(t, "pong", msg["name"])
	assert.Equal(t, map[string]any{"type": "string"}, msg["payload"])

	oneOf := dig(t, tree, "channels", "/", "subscribe", "message", "oneOf").([]any)
	require.Len(t, oneOf, 1)
	assert.Equal(t, map[string]any{"$ref": "#/components/messages/pong"}, oneOf[0])
}

func TestChannel_AutoCreation(t *testing.T) {
	d := newTestDocument()
	d.AddReceiver("/admin", "kick", "", "", None, Object)

	tree := renderTree(t, d)
	oneOf := dig(t, tree, "channels", "/admin", "publish", "message", "oneOf").([]any)
	assert.Len(t, oneOf, 1)

	// The custom channel has no disconnect marker, only the default does.
	admin := dig(t, tree, "channels", "/admin").(map[string]any)
	_, hasHandlers := admin["x-handlers"]
	assert.False(t, hasHandlers)
}

// TestRender_Idempotent: rendering twice without intervening registrations
// yields byte-identical text.
func TestRender_Idempotent(t *testing.T) {
	d := newTestDocument()
	d.AddReceiver("", "get_user", "", "Fetch a user.\n\n    Indented detail line.", Record[user](), Record[token]())
	d.AddSender("", "pong", String, "Reply to ping.")

	first, err := d.Render()
	require.NoError(t, err)
	second, err := d.Render()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Ping", titleCase("ping"))
	assert.Equal(t, "Chat Message", titleCase("chat message"))
	assert.Equal(t, "Get_User", titleCase("get_user"))
	assert.Equal(t, "Room42Info", titleCase("room42info"))
}

func TestDedent(t *testing.T) {
	in := "    first\n    second\n      deeper\n"
	assert.Equal(t, "first\nsecond\n  deeper\n", dedent(in))

	// No common margin: unchanged.
	assert.Equal(t, "a\n  b", dedent("a\n  b"))
	assert.Equal(t, "", dedent(""))
}

func TestDedent_BlankLines(t *testing.T) {
	in := "  a\n\n  b"
	out := dedent(in)
	assert.Equal(t, "a\n\nb", out)
	assert.False(t, strings.Contains(out, "  "))
}
