package asyncapi

import (
	"sync"

	"gopkg.in/yaml.v3"
)

const specVersion = "2.5.0"

const noSpecRef = "#/components/schemas/NoSpec"

// extensionNote is appended to the document description. AsyncAPI has no
// Socket.IO binding, so acknowledgment payloads are described with the
// non-standard x-ack keyword.
const extensionNote = `
AsyncAPI currently does not support Socket.IO binding and Web Socket like syntax is used for now.
In order to support the Socket.IO ACK value, AsyncAPI is extended with the x-ack keyword.
This documentation should NOT be used for generating code due to these limitations.
`

// Info identifies the generated document.
type Info struct {
	Title       string `yaml:"title"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
}

// ServerInfo describes one server entry.
type ServerInfo struct {
	URL             string `yaml:"url"`
	Protocol        string `yaml:"protocol"`
	ProtocolVersion string `yaml:"protocolVersion"`
}

// Ref is a JSON reference to a message or schema component.
type Ref struct {
	Ref string `yaml:"$ref"`
}

// MessageList is the oneOf list of message references of an operation.
type MessageList struct {
	OneOf []Ref `yaml:"oneOf"`
}

// Operation is the publish or subscribe side of a channel.
type Operation struct {
	Message *MessageList `yaml:"message"`
}

// Channel holds the inbound (publish, from the client's perspective) and
// outbound (subscribe) message lists of one namespace.
type Channel struct {
	Publish   *Operation        `yaml:"publish,omitempty"`
	Subscribe *Operation        `yaml:"subscribe,omitempty"`
	Handlers  map[string]string `yaml:"x-handlers,omitempty"`
}

// Message is one entry in the components/messages table. Payload and Ack
// hold either a Ref or an inline schema fragment; nil fields are omitted.
type Message struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Ack         any    `yaml:"x-ack,omitempty"`
	Payload     any    `yaml:"payload,omitempty"`
}

// Components is the messages and schemas table.
type Components struct {
	Messages map[string]*Message       `yaml:"messages"`
	Schemas  map[string]map[string]any `yaml:"schemas"`
}

type documentRoot struct {
	AsyncAPI   string                `yaml:"asyncapi"`
	Info       Info                  `yaml:"info"`
	Servers    map[string]ServerInfo `yaml:"servers"`
	Channels   map[string]*Channel   `yaml:"channels"`
	Components *Components           `yaml:"components"`
}

// Document is the in-memory AsyncAPI specification tree. It is mutated
// additively by every registration and never pruned; Render is a pure
// projection of the current state.
type Document struct {
	mu   sync.RWMutex
	root documentRoot
}

// NewDocument creates a document with the default "/" channel (carrying the
// fixed disconnect handler marker) and the NoSpec schema component.
func NewDocument(title, version, description, serverURL, serverName string) *Document {
	d := &Document{
		root: documentRoot{
			AsyncAPI: specVersion,
			Info: Info{
				Title:       title,
				Version:     version,
				Description: description + extensionNote,
			},
			Servers: map[string]ServerInfo{
				serverName: {
					URL:             serverURL,
					Protocol:        "socketio",
					ProtocolVersion: "5",
				},
			},
			Channels: make(map[string]*Channel),
			Components: &Components{
				Messages: make(map[string]*Message),
				Schemas: map[string]map[string]any{
					"NoSpec": {"description": "Specification is not provided"},
				},
			},
		},
	}

	root := d.channel("/")
	root.Handlers = map[string]string{"disconnect": "disconnect"}

	return d
}

// AddReceiver appends an inbound message entry for an event. The message is
// keyed by messageName, defaulting to the title-cased event name. The ack
// and payload models resolve to a schema reference, an inline fragment, the
// NoSpec reference, or nothing at all.
func (d *Document) AddReceiver(namespace, event, messageName, description string, ack, payload Model) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if messageName == "" {
		messageName = titleCase(event)
	}

	msg := &Message{
		Name:        event,
		Description: dedent(description),
		Ack:         d.resolve(ack),
		Payload:     d.resolve(payload),
	}
	d.root.Components.Messages[messageName] = msg

	ch := d.channel(namespace)
	ch.Publish.Message.OneOf = append(ch.Publish.Message.OneOf,
		Ref{"#/components/messages/" + messageName})
}

// AddSender appends an outbound message entry for an event, keyed directly
// by the event name.
func (d *Document) AddSender(namespace, event string, payload Model, description string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	msg := &Message{
		Name:        event,
		Description: dedent(description),
		Payload:     d.resolve(payload),
	}
	d.root.Components.Messages[event] = msg

	ch := d.channel(namespace)
	ch.Subscribe.Message.OneOf = append(ch.Subscribe.Message.OneOf,
		Ref{"#/components/messages/" + event})
}

// Render returns the document as YAML. Purely a projection: rendering twice
// without intervening registrations yields identical text.
func (d *Document) Render() (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out, err := yaml.Marshal(&d.root)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// resolve maps a model descriptor onto its document representation. Record
// schemas are registered under components/schemas as a side effect.
func (d *Document) resolve(m Model) any {
	switch m.kind {
	case KindNone:
		return nil
	case KindNotProvided:
		return Ref{noSpecRef}
	case KindRecord:
		name := m.typ.Name()
		if schema, err := recordSchema(m.typ); err == nil {
			d.root.Components.Schemas[name] = schema
		}
		return Ref{"#/components/schemas/" + name}
	default:
		return inlineSchema(m.kind)
	}
}

// channel returns the channel for a namespace, creating it with empty
// publish/subscribe lists if needed. Callers hold d.mu.
func (d *Document) channel(namespace string) *Channel {
	if namespace == "" {
		namespace = "/"
	}
	ch, ok := d.root.Channels[namespace]
	if !ok {
		ch = &Channel{
			Publish:   &Operation{Message: &MessageList{OneOf: []Ref{}}},
			Subscribe: &Operation{Message: &MessageList{OneOf: []Ref{}}},
		}
		d.root.Channels[namespace] = ch
	}
	return ch
}
