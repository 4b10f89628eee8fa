package client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/pinhole-run/pinhole/message"
	"github.com/pinhole-run/pinhole/network"
	"github.com/pinhole-run/pinhole/pkg/logger"
	"github.com/pinhole-run/pinhole/storage"
	"github.com/pinhole-run/pinhole/wire"
)

// handshakeTimeout bounds a single TLS handshake attempt. TCP connect
// itself is retried forever (see connectWithRetry); the handshake is
// not, per spec.md §4.3.
const handshakeTimeout = 10 * time.Second

// reconnectInterval is the fixed backoff between TCP connect attempts.
const reconnectInterval = 1 * time.Second

// NetworkSession owns the single long-lived connection to one origin.
// Construct it with New; drive it through Load/Action and observe it
// through Subscribe.
type NetworkSession struct {
	cfg     *Config
	tlsCfg  *tls.Config
	storage *storage.Manager
	queue   *commandQueue
	events  *broadcaster
	log     *logger.SlogLogger

	capabilities message.CapabilitySet

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New builds the storage backend (if not supplied), validates cfg,
// and spawns the session task. The returned NetworkSession is usable
// immediately; the task itself connects in the background.
func New(cfg *Config) (*NetworkSession, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, fmt.Errorf("client: build TLS config: %w", err)
	}

	backend := cfg.StorageBackend
	if backend == nil {
		dir, err := storage.DefaultDataDir()
		if err != nil {
			return nil, fmt.Errorf("client: resolve storage dir: %w", err)
		}
		backend, err = storage.NewFileBackend(dir)
		if err != nil {
			return nil, fmt.Errorf("client: create storage backend: %w", err)
		}
	}

	mgr, err := storage.NewManager(context.Background(), backend, cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("client: create storage manager: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &NetworkSession{
		cfg:          cfg,
		tlsCfg:       tlsCfg,
		storage:      mgr,
		queue:        newCommandQueue(),
		events:       newBroadcaster(),
		log:          logger.NewSlogLogger(slog.LevelInfo, nil),
		capabilities: message.SupportedCapabilities(),
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
	}

	go s.run()
	return s, nil
}

// Load enqueues a request to navigate to and render path.
func (s *NetworkSession) Load(path string) error {
	return s.queue.push(loadCommand{Path: path})
}

// Action enqueues an action dispatch against the session's current
// path, capturing whatever storage its Keys name.
func (s *NetworkSession) Action(action message.Action) error {
	return s.queue.push(actionCommand{Action: action})
}

// Subscribe registers a new event listener. Call the returned function
// to unsubscribe; failing to do so leaks the channel for the life of
// the session.
func (s *NetworkSession) Subscribe() (<-chan Event, func()) {
	return s.events.subscribe()
}

// Close ends the session: the command queue is closed (further
// Load/Action calls fail) and the session task is cancelled. It does
// not block for the task to finish.
func (s *NetworkSession) Close() {
	s.queue.close()
	s.cancel()
}

// Done is closed once the session task has permanently ended, whether
// from Close, an UpgradeRequired error, or the UI disappearing (no
// event subscribers left to broadcast to).
func (s *NetworkSession) Done() <-chan struct{} {
	return s.done
}

// run is the session task: [Disconnected] -> connect-with-retry ->
// [Ready] -> serve until the connection drops, then loop back to
// [Disconnected], clearing Session-scope storage on every drop, until
// something makes the loop terminal.
func (s *NetworkSession) run() {
	defer close(s.done)
	defer s.queue.close()

	isReconnect := false
	for {
		conn, err := s.connectWithRetry()
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.log.Error("client: session ending, TLS handshake failed", "err", err)
			return
		}

		err = s.sessionLoop(conn, isReconnect)
		isReconnect = true
		conn.Close()

		var fe *fatalError
		if errors.As(err, &fe) {
			s.log.Error("client: session ended fatally", "err", fe)
			return
		}

		s.storage.ClearSessionStorage()
		s.log.Warn("client: connection lost, reconnecting", "err", err)

		select {
		case <-s.ctx.Done():
			return
		default:
		}
	}
}

// connectWithRetry dials TCP with indefinite 1-second backoff (no
// overall deadline) and then performs a single TLS handshake attempt.
// A handshake failure is a configuration error, not retried: it
// returns immediately and ends the session.
func (s *NetworkSession) connectWithRetry() (*network.Connection, error) {
	backoffCfg := &network.BackoffConfig{
		InitialInterval: reconnectInterval,
		MaxInterval:     reconnectInterval,
		Multiplier:      1,
		MaxRetries:      0, // unlimited
	}
	backoff, err := network.NewBackoff(backoffCfg)
	if err != nil {
		return nil, err
	}

	var dialer net.Dialer
	for {
		netConn, err := dialer.DialContext(s.ctx, "tcp", s.cfg.Address)
		if err != nil {
			if s.ctx.Err() != nil {
				return nil, s.ctx.Err()
			}
			s.log.Warn("client: TCP connect failed, retrying", "address", s.cfg.Address, "err", err)
			wait, _ := backoff.Next()
			select {
			case <-time.After(wait):
			case <-s.ctx.Done():
				return nil, s.ctx.Err()
			}
			continue
		}

		tlsConn := tls.Client(netConn, s.tlsCfg)
		hctx, cancel := context.WithTimeout(s.ctx, handshakeTimeout)
		err = tlsConn.HandshakeContext(hctx)
		cancel()
		if err != nil {
			tlsConn.Close()
			return nil, fmt.Errorf("client: TLS handshake: %w", err)
		}

		return network.NewConnection(tlsConn, s.cfg.Address, &network.ConnectionConfig{
			ReadDeadline:  0,
			WriteDeadline: 0,
		}), nil
	}
}

// inboundFrame carries a decoded server message, or a terminal error
// from the read loop feeding sessionLoop's select.
type inboundFrame struct {
	msg message.ServerToClientMessage
	err error
	eof bool
}

// sessionLoop drives one connection from ClientHello through to
// whatever ends it: peer EOF, a fatal IO/codec error, or an
// UpgradeRequired/no-subscribers condition that ends the whole task.
// isReconnect is true whenever this is not the session's first
// connection attempt; only then does the first ServerHello trigger the
// automatic current-path replay (a fresh session has nothing to replay,
// and any Load already queued before negotiation completed will send
// its own request).
func (s *NetworkSession) sessionLoop(conn *network.Connection, isReconnect bool) error {
	if err := wire.EncodeFrame(conn, message.NewClientHello(s.capabilities)); err != nil {
		return err
	}

	inbox := make(chan inboundFrame, 1)
	go s.readLoop(conn, inbox)

	negotiated := false
	for {
		select {
		case frame := <-inbox:
			if frame.err != nil {
				return frame.err
			}
			if frame.eof {
				return nil
			}
			if err := s.handleInbound(conn, frame.msg, &negotiated, isReconnect); err != nil {
				return err
			}

		case <-s.queue.wait():
			for _, cmd := range s.queue.drain() {
				if err := s.handleCommand(conn, cmd); err != nil {
					return err
				}
			}

		case <-s.ctx.Done():
			return nil
		}
	}
}

func (s *NetworkSession) readLoop(conn *network.Connection, out chan<- inboundFrame) {
	for {
		var msg message.ServerToClientMessage
		ok, err := wire.DecodeFrame(conn, &msg)
		if err != nil {
			out <- inboundFrame{err: err}
			return
		}
		if !ok {
			out <- inboundFrame{eof: true}
			return
		}
		out <- inboundFrame{msg: msg}
	}
}

func (s *NetworkSession) handleCommand(conn *network.Connection, cmd Command) error {
	switch c := cmd.(type) {
	case loadCommand:
		s.storage.NavigateTo(c.Path)
		return wire.EncodeFrame(conn, message.NewLoad(c.Path, s.storage.GetAllStorage()))

	case actionCommand:
		path := s.storage.CurrentPath()
		return wire.EncodeFrame(conn, message.NewClientAction(path, c.Action, s.storage.GetAllStorage()))

	default:
		return fmt.Errorf("client: unknown command %T", cmd)
	}
}

func (s *NetworkSession) handleInbound(conn *network.Connection, msg message.ServerToClientMessage, negotiated *bool, isReconnect bool) error {
	switch msg.Kind() {
	case "ServerHello":
		caps, _ := msg.AsServerHello()
		s.capabilities = caps
		if *negotiated {
			return nil
		}
		*negotiated = true

		if !isReconnect {
			return nil
		}
		path := s.storage.CurrentPath()
		if path == "" {
			return nil
		}
		// Reconnect re-load behaves like a fresh navigation: Local
		// scope from whatever was in flight before the drop does not
		// carry over.
		s.storage.ClearLocalStorage()
		return wire.EncodeFrame(conn, message.NewLoad(path, s.storage.GetAllStorage()))

	case "Render":
		doc, _ := msg.AsRender()
		return s.emit(DocumentUpdated{Document: doc})

	case "RedirectTo":
		path, _ := msg.AsRedirectTo()
		s.storage.NavigateTo(path)
		s.storage.ClearLocalStorage()
		return wire.EncodeFrame(conn, message.NewLoad(path, s.storage.GetAllStorage()))

	case "Store":
		scope, key, value, _ := msg.AsStore()
		if err := s.storage.Store(s.ctx, scope, key, value); err != nil {
			s.log.Warn("client: dropping Store with unsupported value", "key", key, "err", err)
		}
		return nil

	case "Error":
		code, text, _ := msg.AsError()
		s.log.Warn("client: server reported error", "code", code, "message", text)
		if err := s.emit(ServerError{Code: code, Message: text}); err != nil {
			return err
		}
		if code == message.UpgradeRequired {
			return &fatalError{err: fmt.Errorf("%w: %s", ErrUpgradeRequired, text)}
		}
		return nil

	default:
		return fmt.Errorf("client: unexpected message %s", msg.Kind())
	}
}

// emit delivers ev to every subscriber. A broadcast failure (no
// subscribers at all) is wrapped as fatal: per spec.md §4.5 the UI is
// presumed gone and the session task ends.
func (s *NetworkSession) emit(ev Event) error {
	if err := s.events.send(ev); err != nil {
		return &fatalError{err: fmt.Errorf("client: event broadcast: %w", err)}
	}
	return nil
}
