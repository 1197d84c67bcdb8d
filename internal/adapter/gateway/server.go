package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kaptinlin/jsonschema"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"agentchat/internal/domain"
	"agentchat/internal/infra/tracer"
)

// RPCHandler handles a single RPC method call.
type RPCHandler func(ctx context.Context, client *ClientInfo, payload json.RawMessage) (json.RawMessage, error)

type rpcMethod struct {
	handler RPCHandler
	schema  *jsonschema.Schema // nil accepts any payload
}

// clientConn tracks a single WebSocket connection.
type clientConn struct {
	id        uint64
	info      *ClientInfo
	ws        *websocket.Conn
	sendCh    chan Frame
	done      chan struct{}
	closeOnce sync.Once
}

func (cc *clientConn) close() { cc.closeOnce.Do(func() { close(cc.done) }) }

// Server is the WebSocket gateway. It exposes RPC methods over /ws, forwards
// every bus event to connected clients and serves extra HTTP routes.
type Server struct {
	bus        domain.EventBus
	auth       Authenticator
	logger     *slog.Logger
	addr       string
	origins    []string
	middleware []func(http.Handler) http.Handler

	methodsMu sync.RWMutex
	methods   map[string]rpcMethod

	clients    sync.Map // conn id -> *clientConn
	clientCnt  atomic.Int64
	nextID     atomic.Uint64
	httpRoutes []httpRoute

	httpSrv   *http.Server
	boundAddr atomic.Value // string
	unsubAll  func()
	stopOnce  sync.Once
	metrics   *Metrics
}

type httpRoute struct {
	pattern string
	handler http.HandlerFunc
}

// Option configures a Server.
type Option func(*Server)

// WithAllowedOrigins adds browser origins accepted on /ws besides loopback.
// Entries may be full URLs or host patterns such as "*.example.com".
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		for _, o := range origins {
			if u, err := url.Parse(o); err == nil && u.Host != "" {
				o = u.Host
			}
			s.origins = append(s.origins, o)
		}
	}
}

// WithMiddleware wraps the whole HTTP mux. The first middleware is outermost.
func WithMiddleware(mws ...func(http.Handler) http.Handler) Option {
	return func(s *Server) { s.middleware = append(s.middleware, mws...) }
}

// NewServer creates a gateway server.
func NewServer(bus domain.EventBus, auth Authenticator, addr string, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		bus:     bus,
		auth:    auth,
		logger:  logger,
		addr:    addr,
		origins: []string{"localhost", "localhost:*", "127.0.0.1", "127.0.0.1:*", "[::1]", "[::1]:*"},
		methods: make(map[string]rpcMethod),
		metrics: &Metrics{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// RegisterHandler adds an RPC handler that accepts any payload.
func (s *Server) RegisterHandler(method string, handler RPCHandler) {
	s.methodsMu.Lock()
	s.methods[method] = rpcMethod{handler: handler}
	s.methodsMu.Unlock()
}

// RegisterMethod adds an RPC handler whose payload must satisfy the JSON
// Schema in schemaJSON.
func (s *Server) RegisterMethod(method, schemaJSON string, handler RPCHandler) error {
	schema, err := jsonschema.NewCompiler().Compile([]byte(schemaJSON))
	if err != nil {
		return fmt.Errorf("compile schema for %s: %w", method, err)
	}
	s.methodsMu.Lock()
	s.methods[method] = rpcMethod{handler: handler, schema: schema}
	s.methodsMu.Unlock()
	return nil
}

// Methods returns the registered RPC method names.
func (s *Server) Methods() []string {
	s.methodsMu.RLock()
	defer s.methodsMu.RUnlock()
	names := make([]string, 0, len(s.methods))
	for name := range s.methods {
		names = append(names, name)
	}
	return names
}

// RegisterHTTPRoute adds an HTTP handler to the gateway's mux. Must be
// called before Start.
func (s *Server) RegisterHTTPRoute(pattern string, handler http.HandlerFunc) {
	s.httpRoutes = append(s.httpRoutes, httpRoute{pattern: pattern, handler: handler})
}

// Metrics returns the server's counters.
func (s *Server) Metrics() *Metrics { return s.metrics }

// ClientCount returns the number of connected WebSocket clients.
func (s *Server) ClientCount() int { return int(s.clientCnt.Load()) }

// Handler returns the HTTP handler serving /ws and the registered routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleUpgrade)
	for _, route := range s.httpRoutes {
		mux.HandleFunc(route.pattern, route.handler)
	}
	var h http.Handler = mux
	for i := len(s.middleware) - 1; i >= 0; i-- {
		h = s.middleware[i](h)
	}
	return h
}

// Start listens on the configured address and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("gateway listen: %w", err)
	}
	s.httpSrv = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	if s.bus != nil {
		s.unsubAll = s.bus.SubscribeAll(s.forwardEvent)
	}
	// Published last: BoundAddr != "" means Stop may run.
	s.boundAddr.Store(listener.Addr().String())
	s.logger.Info("gateway started", "addr", listener.Addr().String())

	go func() {
		<-ctx.Done()
		s.Stop(context.Background())
	}()

	if err := s.httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("gateway serve: %w", err)
	}
	return nil
}

// Stop disconnects every client and shuts the HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	s.stopOnce.Do(func() {
		if s.unsubAll != nil {
			s.unsubAll()
		}
		s.clients.Range(func(key, value any) bool {
			cc := value.(*clientConn)
			cc.close()
			cc.ws.Close(websocket.StatusGoingAway, "server shutting down")
			return true
		})
		if s.httpSrv != nil {
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			err = s.httpSrv.Shutdown(shutdownCtx)
		}
	})
	return err
}

// BoundAddr returns the address the server bound to, or "" before Start.
func (s *Server) BoundAddr() string {
	v, _ := s.boundAddr.Load().(string)
	return v
}

func (s *Server) forwardEvent(_ context.Context, event domain.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	s.metrics.observeEvent(event.Type)
	frame := Frame{Type: FrameTypeEvent, Payload: payload}
	s.clients.Range(func(_, value any) bool {
		cc := value.(*clientConn)
		select {
		case cc.sendCh <- frame:
			s.metrics.EventsForwarded.Add(1)
		default:
			s.metrics.EventsDropped.Add(1)
			s.logger.Warn("gateway: dropped event for slow client", "conn_id", cc.id, "event", event.Type)
		}
		return true
	})
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	info, err := s.auth.Authenticate(tokenFromRequest(r))
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.origins})
	if err != nil {
		s.logger.Warn("websocket accept failed", "error", err)
		return
	}

	cc := &clientConn{
		id:     s.nextID.Add(1),
		info:   info,
		ws:     ws,
		sendCh: make(chan Frame, 64),
		done:   make(chan struct{}),
	}
	s.clients.Store(cc.id, cc)
	s.clientCnt.Add(1)
	s.logger.Info("gateway client connected", "conn_id", cc.id, "client", info.Name)

	go s.writeLoop(cc)
	s.readLoop(r.Context(), cc)

	cc.close()
	s.clients.Delete(cc.id)
	s.clientCnt.Add(-1)
	ws.Close(websocket.StatusNormalClosure, "")
	s.logger.Info("gateway client disconnected", "conn_id", cc.id)
}

// readLoop handles one connection's requests in arrival order so a client
// sees its mutations applied in the order it sent them.
func (s *Server) readLoop(ctx context.Context, cc *clientConn) {
	for {
		var frame Frame
		if err := wsjson.Read(ctx, cc.ws, &frame); err != nil {
			return
		}
		if frame.Type != FrameTypeRequest {
			continue
		}
		result, err := s.call(ctx, cc.info, frame.Method, frame.Payload)
		select {
		case cc.sendCh <- responseFrame(frame.ID, result, err):
		case <-cc.done:
			return
		}
	}
}

func (s *Server) writeLoop(cc *clientConn) {
	for {
		select {
		case <-cc.done:
			return
		case frame := <-cc.sendCh:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := wsjson.Write(ctx, cc.ws, frame)
			cancel()
			if err != nil {
				cc.close()
				return
			}
		}
	}
}

// call resolves method, validates payload against its schema and runs it.
func (s *Server) call(ctx context.Context, client *ClientInfo, method string, payload json.RawMessage) (json.RawMessage, error) {
	ctx, span := tracer.StartSpan(ctx, "gateway.rpc")
	defer span.End()
	span.SetAttributes(tracer.StringAttr("rpc.method", method), tracer.StringAttr("rpc.client", client.Name))

	s.metrics.RPCCalls.Add(1)
	result, err := s.invoke(ctx, client, method, payload)
	if err != nil {
		s.metrics.RPCErrors.Add(1)
		tracer.RecordError(span, err)
		s.logger.Debug("gateway rpc failed", "method", method, "error", err)
		return nil, err
	}
	tracer.SetOK(span)
	return result, nil
}

func (s *Server) invoke(ctx context.Context, client *ClientInfo, method string, payload json.RawMessage) (json.RawMessage, error) {
	s.methodsMu.RLock()
	m, ok := s.methods[method]
	s.methodsMu.RUnlock()
	if !ok {
		return nil, domain.NewDomainError("gateway."+method, domain.ErrRPCMethodNotFound, method)
	}
	if m.schema != nil {
		if err := validatePayload(m.schema, payload); err != nil {
			return nil, domain.NewDomainError("gateway."+method, domain.ErrRPCInvalidPayload, err.Error())
		}
	}
	return m.handler(ctx, client, payload)
}

func validatePayload(schema *jsonschema.Schema, payload json.RawMessage) error {
	var data any = map[string]any{}
	if trimmed := strings.TrimSpace(string(payload)); trimmed != "" && trimmed != "null" {
		if err := json.Unmarshal(payload, &data); err != nil {
			return fmt.Errorf("malformed JSON: %w", err)
		}
	}
	result := schema.Validate(data)
	if !result.IsValid() {
		return fmt.Errorf("%s", result.Error())
	}
	return nil
}
