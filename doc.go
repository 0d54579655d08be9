// Package sockio provides a Socket.IO v4 server implementation in Go.
//
// This library implements the Socket.IO v4 protocol with WebSocket transport only
// (Engine.IO v4). It is the transport underneath the asyncapi package, which adds
// payload validation against declared data models and AsyncAPI document generation
// for every registered event; the transport itself can also be used standalone.
//
// # Features
//
//   - Socket.IO v4 protocol support
//   - WebSocket transport only (Engine.IO v4)
//   - Namespaces for logical separation
//   - Rooms for grouping connections
//   - Event acknowledgments
//   - Efficient broadcasting
//   - Compatible with official Socket.IO clients
//
// # Quick Start
//
//	server := sockio.NewServer(nil)
//
//	server.OnConnect(func(socket *sockio.Socket) {
//	    log.Printf("Client connected: %s", socket.ID())
//
//	    socket.On("message", func(data ...interface{}) {
//	        log.Printf("Received: %v", data)
//	        socket.Emit("response", "Message received!")
//	    })
//
//	    socket.OnDisconnect(func(reason string) {
//	        log.Printf("Client disconnected: %s", reason)
//	    })
//	})
//
//	http.Handle("/socket.io/", server)
//	http.ListenAndServe(":3000", nil)
//
// For validated, self-documenting event handling, wrap the server with the
// asyncapi package instead of registering raw handlers:
//
//	api := asyncapi.New(server, asyncapi.Config{
//	    Validate:     true,
//	    GenerateDocs: true,
//	    Title:        "Chat API",
//	})
//
//	asyncapi.OnTyped(api, "ping", func(s *sockio.Socket, n int) (int, error) {
//	    return n + 1, nil
//	})
//
// # Namespaces
//
// Namespaces provide logical separation of concerns. Each namespace has its own
// event handlers and rooms.
//
//	// Default namespace "/"
//	server.OnConnect(func(socket *sockio.Socket) {
//	    // Handle connection
//	})
//
//	// Custom namespace
//	adminNs := server.Of("/admin")
//	adminNs.OnConnect(func(socket *sockio.Socket) {
//	    // Handle admin connection
//	})
//
// # Rooms
//
// Rooms allow you to group sockets for targeted broadcasting.
//
//	socket.Join("room1")
//	server.To("room1").Emit("news", "Hello room!")
//	socket.Leave("room1")
//
// # Event Acknowledgments
//
// Handle acknowledgment requests from clients:
//
//	socket.On("ping", func(data ...interface{}) {
//	    // Last argument is the ack function if client requested acknowledgment
//	    if len(data) > 0 {
//	        if ackFn, ok := data[len(data)-1].(func(...interface{})); ok {
//	            ackFn("pong")
//	        }
//	    }
//	})
//
// # Broadcasting
//
//	// To all clients in default namespace
//	server.Emit("broadcast", "Hello everyone!")
//
//	// To specific rooms
//	server.To("room1", "room2").Emit("news", "Hello rooms!")
//
//	// Exclude specific sockets
//	server.To("room1").Except(socket.ID()).Emit("news", "Hello others!")
//
// # Configuration
//
//	config := &sockio.Config{
//	    PingInterval: 25000, // 25 seconds
//	    PingTimeout:  20000, // 20 seconds
//	    MaxPayload:   1000000, // 1MB
//	}
//	server := sockio.NewServer(config)
//
// # Thread Safety
//
// All operations are goroutine-safe. Event handlers are called in separate
// goroutines, allowing concurrent processing of events.
package sockio
