package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/pinhole-run/pinhole/message"
	"github.com/pinhole-run/pinhole/network"
	"github.com/pinhole-run/pinhole/pkg/logger"
	"github.com/pinhole-run/pinhole/tlsconfig"
	"github.com/pinhole-run/pinhole/wire"
)

// handshakeTimeout bounds how long the accept path waits for a client
// to complete its TLS handshake before giving up on the connection.
const handshakeTimeout = 10 * time.Second

// Server accepts TLS connections on a bound address and dispatches
// each to app's route table. Every accepted connection runs in its own
// goroutine, processing requests strictly serially; connections share
// nothing but the immutable Application.
type Server struct {
	app      *Application
	listener *network.Listener
	log      *logger.SlogLogger
}

// New builds a Server from cfg and app. It loads the TLS identity
// eagerly: a bad certificate or key fails here, before the server ever
// starts accepting connections.
func New(cfg *Config, app *Application) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tlsCfg, err := (&tlsconfig.ServerConfig{CertPath: cfg.CertPath, KeyPath: cfg.KeyPath}).Build()
	if err != nil {
		return nil, fmt.Errorf("server: build TLS config: %w", err)
	}

	listenerCfg := network.DefaultListenerConfig(cfg.BindAddr)
	listenerCfg.TLSConfig = tlsCfg

	listener, err := network.NewListener(listenerCfg, nil)
	if err != nil {
		return nil, fmt.Errorf("server: create listener: %w", err)
	}

	s := &Server{
		app:      app,
		listener: listener,
		log:      logger.NewSlogLogger(slog.LevelInfo, nil),
	}
	listener.OnConnection(s.onConnection)
	return s, nil
}

// ListenAndServe starts the accept loop. It returns once the listener
// is bound; the accept loop itself runs in a background goroutine
// until Close is called.
func (s *Server) ListenAndServe() error {
	return s.listener.Start()
}

// Close stops accepting new connections and closes the listener.
func (s *Server) Close() error {
	return s.listener.Close()
}

// Addr returns the listener's bound address, valid after
// ListenAndServe returns successfully.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// onConnection completes the TLS handshake for a freshly accepted
// connection and, on success, runs its dispatch loop to completion.
// Handshake failures are logged and the connection is discarded
// without ever reaching application code.
func (s *Server) onConnection(conn *network.Connection) error {
	ctx, cancel := context.WithTimeout(context.Background(), handshakeTimeout)
	defer cancel()

	if err := conn.Handshake(ctx); err != nil {
		s.log.Warn("server: TLS handshake failed", "remote", conn.RemoteAddr(), "err", err)
		return err
	}

	err := s.dispatch(conn)
	conn.Close()
	return err
}

// connState is the per-connection capability and message-count
// bookkeeping the dispatch loop threads through each iteration.
type connState struct {
	capabilities message.CapabilitySet
	helloSeen    bool
	messageCount uint64
}

// dispatch reads ClientToServerMessage frames from conn until the peer
// closes the stream, a fatal IO/codec error occurs, or a protocol
// violation (missing ClientHello, failed capability assertion) poisons
// the connection. Requests are handled strictly serially: the next
// frame is not read until the current one's response(s) are written.
func (s *Server) dispatch(conn *network.Connection) error {
	state := connState{capabilities: message.CapabilitySet{}}

	for {
		var msg message.ClientToServerMessage
		ok, err := wire.DecodeFrame(conn, &msg)
		if err != nil {
			s.log.Warn("server: frame read failed", "conn", conn.ID(), "err", err)
			return err
		}
		if !ok {
			return nil
		}
		state.messageCount++

		if err := s.dispatchOne(conn, &state, msg); err != nil {
			return err
		}
	}
}

func (s *Server) dispatchOne(conn *network.Connection, state *connState, msg message.ClientToServerMessage) error {
	switch msg.Kind() {
	case "ClientHello":
		caps, _ := msg.AsClientHello()
		negotiated := s.app.SupportedCapabilities().Intersect(caps)
		state.capabilities = negotiated
		state.helloSeen = true
		return wire.EncodeFrame(conn, message.NewServerHello(negotiated))

	case "Load":
		if !state.helloSeen {
			return s.protocolViolation(conn, "ClientHello required before any other message")
		}
		path, storage, _ := msg.AsLoad()
		return s.handleLoad(conn, path, storage)

	case "Action":
		if !state.helloSeen {
			return s.protocolViolation(conn, "ClientHello required before any other message")
		}
		path, action, storage, _ := msg.AsAction()
		return s.handleAction(conn, *state, path, action, storage)

	default:
		return s.protocolViolation(conn, fmt.Sprintf("unexpected message %s", msg.Kind()))
	}
}

func (s *Server) handleLoad(conn *network.Connection, path string, storage message.StateMap) error {
	route, params, ok := s.app.match(path)
	if !ok {
		s.log.Warn("server: route not found", "path", path)
		return wire.EncodeFrame(conn, message.NewError(message.NotFound, fmt.Sprintf("Route not found: %s", path)))
	}

	render, err := route.Render(params, storage)
	if err != nil {
		return wire.EncodeFrame(conn, message.NewError(message.InternalServerError, err.Error()))
	}

	if render.isRedirect {
		return wire.EncodeFrame(conn, message.NewRedirectTo(render.redirectTo))
	}
	return wire.EncodeFrame(conn, message.NewRender(render.document))
}

func (s *Server) handleAction(conn *network.Connection, state connState, path string, action message.Action, storage message.StateMap) error {
	route, params, ok := s.app.match(path)
	if !ok {
		s.log.Warn("server: route not found", "path", path)
		return wire.EncodeFrame(conn, message.NewError(message.NotFound, fmt.Sprintf("Route not found: %s", path)))
	}

	ctx := newContext(conn, storage, state.capabilities)
	if err := route.Action(action, params, ctx); err != nil {
		var capErr *missingCapabilityError
		if errors.As(err, &capErr) {
			// Context.AssertCapability already sent Error{UpgradeRequired};
			// propagate to close the connection without sending a second
			// error message on top of it.
			return err
		}
		s.log.Warn("server: action handler error", "path", path, "action", action.Name, "err", err)
		return wire.EncodeFrame(conn, message.NewError(message.InternalServerError, err.Error()))
	}
	return nil
}

func (s *Server) protocolViolation(conn *network.Connection, msg string) error {
	if err := wire.EncodeFrame(conn, message.NewError(message.BadRequest, msg)); err != nil {
		return err
	}
	return ErrClientHelloRequired
}
