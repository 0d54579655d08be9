// Package asyncapi adds payload validation and AsyncAPI document generation
// on top of a sockio.Server.
//
// The facade intercepts handler registration and emit calls: inbound
// payloads are coerced to a declared request model before user code runs,
// handler results are checked against a declared response model, and every
// registration contributes a message entry to an incrementally built
// AsyncAPI 2.5.0 document that can be rendered to YAML at any time.
//
//	server := sockio.NewServer(nil)
//	api := asyncapi.New(server, asyncapi.Config{
//	    Validate:     true,
//	    GenerateDocs: true,
//	    Title:        "Chat API",
//	})
//
//	type Token struct {
//	    Token int `json:"token"`
//	}
//
//	asyncapi.OnTyped(api, "login", func(s *sockio.Socket, t Token) (string, error) {
//	    return "ok", nil
//	})
//
//	api.DocEmit("announce", asyncapi.String)
//	api.Emit("announce", "hello")
//
//	yaml, _ := api.Spec().Render()
//
// Models are described by a closed set of descriptors: Record[T] for struct
// payloads, Int / String / Bool / Float for primitives, Object for untyped
// containers, and NotProvided when an event is documented without a schema.
//
// # Failure policy
//
// A single process-wide hook, installed with OnErrorDefault, receives every
// validation failure. Without a hook the two directions differ on purpose:
// inbound request/response failures are dropped (the handler is not invoked
// and no acknowledgment is sent, so the caller observes a timeout), while
// emit failures are returned to the caller. Configuration mistakes such as
// conflicting DocEmit declarations always surface immediately.
//
// Register all events during startup, before the transport begins accepting
// connections.
package asyncapi
