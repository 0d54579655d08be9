package asyncapi

import (
	"fmt"
	"net/http"
	"reflect"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/wsrooms/sockio"
)

// HandlerFunc is an application event handler. data is the inbound payload,
// already coerced to the declared request model. A non-nil result is sent
// back as the acknowledgment when the client requested one.
type HandlerFunc func(s *sockio.Socket, data any) (any, error)

// ErrorHandler is the single process-wide hook for validation and handler
// failures. Its return value replaces the failed call's result.
type ErrorHandler func(err error) any

// Config configures the validating facade.
type Config struct {
	// Validate enables request, response and emit payload validation.
	Validate bool
	// GenerateDocs enables AsyncAPI message generation for On registrations.
	GenerateDocs bool

	// Document identity. Defaults mirror a local demo deployment.
	Title       string
	Version     string
	Description string
	ServerURL   string
	ServerName  string

	// Logger receives validation failures at error level. Nop by default.
	Logger zerolog.Logger
	// Metrics enables facade metrics when set.
	Metrics prometheus.Registerer
}

func (c *Config) applyDefaults() {
	if c.Title == "" {
		c.Title = "Demo Chat API"
	}
	if c.Version == "" {
		c.Version = "1.0.0"
	}
	if c.Description == "" {
		c.Description = c.Title
	}
	if c.ServerURL == "" {
		c.ServerURL = "http://localhost:5000"
	}
	if c.ServerName == "" {
		c.ServerName = "BACKEND"
	}
}

// registration describes one inbound event: its models and its
// documentation attributes. Immutable once created.
type registration struct {
	event         string
	namespace     string
	requestModel  Model
	responseModel Model
	messageName   string
	description   string
	handler       HandlerFunc
}

// Option customizes an On or DocEmit registration.
type Option func(*registration)

// WithNamespace registers the event under a namespace other than "/".
func WithNamespace(namespace string) Option {
	return func(r *registration) { r.namespace = normalizeNamespace(namespace) }
}

// WithRequestModel declares the inbound payload model.
func WithRequestModel(m Model) Option {
	return func(r *registration) { r.requestModel = m }
}

// WithResponseModel declares the acknowledgment model.
func WithResponseModel(m Model) Option {
	return func(r *registration) { r.responseModel = m }
}

// WithMessageName overrides the documented message name, which defaults to
// the title-cased event name.
func WithMessageName(name string) Option {
	return func(r *registration) { r.messageName = name }
}

// WithDescription sets the documented message description.
func WithDescription(description string) Option {
	return func(r *registration) { r.description = description }
}

// Server wraps a sockio.Server with payload validation against declared
// models and incremental AsyncAPI document generation. Register all events
// before the transport starts accepting connections; registration is not
// synchronized against live dispatch.
type Server struct {
	io  *sockio.Server
	cfg Config
	doc *Document

	mu         sync.Mutex
	regs       map[string][]*registration // namespace -> registrations
	emitModels map[string]Model           // event -> declared outbound model
	onConnect  map[string]func(*sockio.Socket)
	wired      map[string]bool
	errHandler ErrorHandler

	log     zerolog.Logger
	metrics *collector
}

// New creates the facade around an existing transport server.
func New(io *sockio.Server, cfg Config) *Server {
	cfg.applyDefaults()
	return &Server{
		io:  io,
		cfg: cfg,
		doc: NewDocument(cfg.Title, cfg.Version, cfg.Description, cfg.ServerURL, cfg.ServerName),

		regs:       make(map[string][]*registration),
		emitModels: make(map[string]Model),
		onConnect:  make(map[string]func(*sockio.Socket)),
		wired:      make(map[string]bool),

		log:     cfg.Logger.With().Str("component", "asyncapi").Logger(),
		metrics: newCollector(cfg.Metrics),
	}
}

// IO returns the wrapped transport server.
func (s *Server) IO() *sockio.Server { return s.io }

// Spec returns the specification document handle.
func (s *Server) Spec() *Document { return s.doc }

// ServeHTTP delegates to the transport, so the facade can be mounted at the
// socket endpoint directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.io.ServeHTTP(w, r)
}

// DocsHandler serves the rendered AsyncAPI document as YAML.
func (s *Server) DocsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out, err := s.doc.Render()
		if err != nil {
			http.Error(w, "failed to render specification", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.Write([]byte(out))
	})
}

// OnConnect registers a connection handler for the default namespace,
// invoked after the facade's handlers are attached to the socket.
func (s *Server) OnConnect(h func(*sockio.Socket)) {
	s.OnConnectNamespace("/", h)
}

// OnConnectNamespace is OnConnect for a specific namespace.
func (s *Server) OnConnectNamespace(namespace string, h func(*sockio.Socket)) {
	ns := normalizeNamespace(namespace)
	s.mu.Lock()
	s.onConnect[ns] = h
	s.mu.Unlock()
	s.wire(ns)
}

// On registers a validated event handler. The handler is wrapped so that
// inbound payloads are coerced to the declared request model before user
// code runs and results are checked against the response model after; a
// message entry is added to the document when GenerateDocs is set.
func (s *Server) On(event string, h HandlerFunc, opts ...Option) {
	reg := &registration{event: event, namespace: "/", handler: h}
	for _, opt := range opts {
		opt(reg)
	}

	if s.cfg.GenerateDocs {
		s.doc.AddReceiver(reg.namespace, event, reg.messageName, reg.description,
			reg.responseModel, reg.requestModel)
	}

	s.mu.Lock()
	s.regs[reg.namespace] = append(s.regs[reg.namespace], reg)
	s.mu.Unlock()

	s.wire(reg.namespace)
}

// OnTyped registers a handler whose request and response models are derived
// from its signature, so declarations stay next to the types they validate.
// Explicit WithRequestModel / WithResponseModel options take precedence over
// the derived models. Req must be a struct, integer, float64, string, bool
// or map type.
func OnTyped[Req, Resp any](s *Server, event string, h func(*sockio.Socket, Req) (Resp, error), opts ...Option) {
	reqType := reflect.TypeOf((*Req)(nil)).Elem()
	derivedReq := modelForType(reqType)
	derivedResp := modelForType(reflect.TypeOf((*Resp)(nil)).Elem())

	wrapped := func(sock *sockio.Socket, data any) (any, error) {
		req, ok := data.(Req)
		if !ok {
			switch {
			case data == nil:
				// leave req at its zero value
			case reflect.TypeOf(data).ConvertibleTo(reqType):
				req = reflect.ValueOf(data).Convert(reqType).Interface().(Req)
			default:
				return nil, &RequestValidationError{
					Event: event,
					Model: derivedReq,
					Err:   fmt.Errorf("payload type %T does not match %s", data, reqType),
				}
			}
		}
		return h(sock, req)
	}

	allOpts := make([]Option, 0, len(opts)+2)
	allOpts = append(allOpts, WithRequestModel(derivedReq), WithResponseModel(derivedResp))
	allOpts = append(allOpts, opts...)
	s.On(event, wrapped, allOpts...)
}

// DocEmit declares that an event will be used for outbound emits, recording
// its payload model for validation and adding an outbound message entry to
// the document. Calling it again with the identical model is a no-op;
// calling it again with a different model returns ErrEmitModelConflict.
func (s *Server) DocEmit(event string, model Model, opts ...Option) error {
	reg := &registration{event: event, namespace: "/"}
	for _, opt := range opts {
		opt(reg)
	}

	s.mu.Lock()
	existing, ok := s.emitModels[event]
	if ok {
		s.mu.Unlock()
		if !existing.Equal(model) {
			return fmt.Errorf("%w: %s", ErrEmitModelConflict, event)
		}
		return nil
	}
	s.emitModels[event] = model
	s.mu.Unlock()

	s.doc.AddSender(reg.namespace, event, model, reg.description)
	return nil
}

// OnErrorDefault installs the process-wide error hook. Re-assignment
// overwrites the previous hook; it is never cleared automatically.
func (s *Server) OnErrorDefault(h ErrorHandler) error {
	if h == nil {
		return ErrNilErrorHandler
	}
	s.mu.Lock()
	s.errHandler = h
	s.mu.Unlock()
	return nil
}

// Emit broadcasts to the default namespace after validating the payload
// against the model declared via DocEmit.
func (s *Server) Emit(event string, data ...any) error {
	s.metrics.emit(event)
	data, handled, err := s.checkEmit(event, data)
	if err != nil || handled {
		return err
	}
	return s.io.Emit(event, data...)
}

// To returns a validating broadcast operator for specific rooms in the
// default namespace.
func (s *Server) To(rooms ...string) *Broadcast {
	return &Broadcast{server: s, op: s.io.To(rooms...)}
}

// EmitSocket sends a validated event to a single socket.
func (s *Server) EmitSocket(sock *sockio.Socket, event string, data ...any) error {
	s.metrics.emit(event)
	data, handled, err := s.checkEmit(event, data)
	if err != nil || handled {
		return err
	}
	return sock.Emit(event, data...)
}

// Broadcast is the validating counterpart of sockio.BroadcastOperator.
type Broadcast struct {
	server *Server
	op     *sockio.BroadcastOperator
}

// Except excludes specific socket IDs from the broadcast.
func (b *Broadcast) Except(socketIDs ...string) *Broadcast {
	b.op = b.op.Except(socketIDs...)
	return b
}

// Emit broadcasts the event after payload validation.
func (b *Broadcast) Emit(event string, data ...any) error {
	b.server.metrics.emit(event)
	data, handled, err := b.server.checkEmit(event, data)
	if err != nil || handled {
		return err
	}
	return b.op.Emit(event, data...)
}

// checkEmit validates the first payload element against the declared emit
// model. handled reports that the error hook consumed a failure, in which
// case the transport emit is skipped entirely. With no hook installed the
// error is returned to the caller; this is deliberately asymmetric with the
// inbound pipeline, which drops unhandled failures.
func (s *Server) checkEmit(event string, data []any) (out []any, handled bool, err error) {
	if !s.cfg.Validate || len(data) == 0 {
		return data, false, nil
	}

	s.mu.Lock()
	model, ok := s.emitModels[event]
	s.mu.Unlock()
	if !ok || !model.active() {
		return data, false, nil
	}

	if model.check(data[0]) == nil {
		if model.Kind() == KindRecord {
			if plain, merr := toPlainMap(data[0]); merr == nil {
				out = append([]any{plain}, data[1:]...)
				return out, false, nil
			}
		}
		return data, false, nil
	}

	verr := &EmitValidationError{Event: event, Model: model}
	s.metrics.failure(event, "emit")
	s.log.Error().Err(verr).Str("event", event).Msg("emit validation failed")

	if h := s.errorHandler(); h != nil {
		h(verr)
		return nil, true, nil
	}
	return nil, false, verr
}

// wire installs the facade's connect hook on a namespace once. On each
// connection it attaches every wrapped handler registered for that
// namespace, then runs the application's own connect handler.
func (s *Server) wire(ns string) {
	s.mu.Lock()
	if s.wired[ns] {
		s.mu.Unlock()
		return
	}
	s.wired[ns] = true
	s.mu.Unlock()

	s.io.Of(ns).OnConnect(func(sock *sockio.Socket) {
		s.mu.Lock()
		regs := append([]*registration(nil), s.regs[ns]...)
		connect := s.onConnect[ns]
		s.mu.Unlock()

		for _, reg := range regs {
			reg := reg
			sock.On(reg.event, func(args ...any) {
				s.dispatch(reg, sock, args)
			})
		}
		if connect != nil {
			connect(sock)
		}
	})
}

// dispatch is the validation pipeline around one inbound event delivery.
func (s *Server) dispatch(reg *registration, sock *sockio.Socket, args []any) {
	s.metrics.event(reg.event)

	// The transport appends the ack callback as the last argument when the
	// client requested an acknowledgment.
	var ack func(...any)
	if len(args) > 0 {
		if fn, ok := args[len(args)-1].(func(...any)); ok {
			ack = fn
			args = args[:len(args)-1]
		}
	}

	var payload any
	if len(args) > 0 {
		payload = args[len(args)-1]
	}

	result, err := s.invoke(reg, sock, payload)
	if err != nil {
		s.log.Error().Err(err).Str("event", reg.event).Msg("event pipeline failed")
		h := s.errorHandler()
		if h == nil {
			// No hook installed: the failure is dropped and the caller's
			// acknowledgment never fires.
			return
		}
		result = h(err)
	}

	if ack == nil {
		return
	}
	if result == nil {
		ack()
		return
	}
	if isRecordValue(result) {
		if plain, merr := toPlainMap(result); merr == nil {
			ack(plain)
			return
		}
	}
	ack(result)
}

// invoke coerces the payload, runs the user handler and checks the result.
func (s *Server) invoke(reg *registration, sock *sockio.Socket, payload any) (any, error) {
	if payload != nil && s.cfg.Validate && reg.requestModel.active() {
		coerced, err := reg.requestModel.coerce(payload)
		if err != nil {
			s.metrics.failure(reg.event, "request")
			return nil, &RequestValidationError{Event: reg.event, Model: reg.requestModel, Err: err}
		}
		payload = coerced
	}

	result, err := reg.handler(sock, payload)
	if err != nil {
		return nil, err
	}

	if result != nil && s.cfg.Validate && reg.responseModel.active() {
		if cerr := reg.responseModel.check(result); cerr != nil {
			s.metrics.failure(reg.event, "response")
			return nil, &ResponseValidationError{Event: reg.event, Model: reg.responseModel}
		}
	}
	return result, nil
}

func (s *Server) errorHandler() ErrorHandler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errHandler
}

func normalizeNamespace(ns string) string {
	if ns == "" {
		return "/"
	}
	return ns
}
