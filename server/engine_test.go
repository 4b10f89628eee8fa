package server

import (
	"fmt"
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinhole-run/pinhole/message"
	"github.com/pinhole-run/pinhole/network"
	"github.com/pinhole-run/pinhole/pkg/logger"
	"github.com/pinhole-run/pinhole/wire"
)

type helloRoute struct{}

func (helloRoute) Path() string { return "/hello" }
func (helloRoute) Action(message.Action, map[string]string, *Context) error {
	return fmt.Errorf("no actions on /hello")
}
func (helloRoute) Render(map[string]string, message.StateMap) (Render, error) {
	doc := message.Document{Node: message.NewText("Hello")}
	return RenderDocument(doc), nil
}

type counterRoute struct{}

func (counterRoute) Path() string { return "/counter" }
func (counterRoute) Action(action message.Action, _ map[string]string, ctx *Context) error {
	if action.Name != "increment" {
		return fmt.Errorf("unknown action %q", action.Name)
	}
	count := 0.0
	if v, ok := ctx.Storage["count"]; ok {
		if s, ok := v.StringValue(); ok {
			fmt.Sscanf(s, "%f", &count)
		}
	}
	return ctx.Store(message.Session, "count", message.String(fmt.Sprintf("%d", int(count)+1)))
}
func (counterRoute) Render(_ map[string]string, storage message.StateMap) (Render, error) {
	count := "0"
	if v, ok := storage["count"]; ok {
		if s, ok := v.StringValue(); ok {
			count = s
		}
	}
	doc := message.Document{Node: message.NewText(fmt.Sprintf("Count: %s", count))}
	return RenderDocument(doc), nil
}

func pipeServer(t *testing.T, app *Application) (client net.Conn, done chan error) {
	t.Helper()
	serverSide, clientSide := net.Pipe()
	s := &Server{app: app, log: logger.NewSlogLogger(slog.LevelError, nil)}
	conn := network.NewConnection(serverSide, "test-conn", nil)

	done = make(chan error, 1)
	go func() {
		done <- s.dispatch(conn)
	}()
	return clientSide, done
}

func sendClient(t *testing.T, conn net.Conn, msg message.ClientToServerMessage) {
	t.Helper()
	require.NoError(t, wire.EncodeFrame(conn, msg))
}

func recvServer(t *testing.T, conn net.Conn) message.ServerToClientMessage {
	t.Helper()
	var msg message.ServerToClientMessage
	ok, err := wire.DecodeFrame(conn, &msg)
	require.NoError(t, err)
	require.True(t, ok)
	return msg
}

func TestDispatchLoadWithEmptyStorage(t *testing.T) {
	app := NewApplication(message.NewCapabilitySet())
	app.AddRoute(helloRoute{})
	clientConn, done := pipeServer(t, app)
	defer clientConn.Close()

	sendClient(t, clientConn, message.NewClientHello(message.NewCapabilitySet(message.CoreV1)))
	hello := recvServer(t, clientConn)
	caps, ok := hello.AsServerHello()
	require.True(t, ok)
	assert.True(t, caps.Contains(message.CoreV1))

	sendClient(t, clientConn, message.NewLoad("/hello", message.StateMap{}))
	reply := recvServer(t, clientConn)
	doc, ok := reply.AsRender()
	require.True(t, ok)
	text, _, ok := doc.Node.AsText()
	require.True(t, ok)
	assert.Equal(t, "Hello", text)

	clientConn.Close()
	require.NoError(t, <-done)
}

func TestDispatchActionStoreThenLoadReflectsIt(t *testing.T) {
	app := NewApplication(message.NewCapabilitySet())
	app.AddRoute(counterRoute{})
	clientConn, done := pipeServer(t, app)
	defer clientConn.Close()

	sendClient(t, clientConn, message.NewClientHello(message.NewCapabilitySet(message.CoreV1)))
	recvServer(t, clientConn)

	sendClient(t, clientConn, message.NewClientAction("/counter",
		message.NewAction("increment", nil),
		message.StateMap{"count": message.String("0")}))
	storeMsg := recvServer(t, clientConn)
	scope, key, value, ok := storeMsg.AsStore()
	require.True(t, ok)
	assert.Equal(t, message.Session, scope)
	assert.Equal(t, "count", key)
	assert.Equal(t, "1", value.AsString())

	sendClient(t, clientConn, message.NewLoad("/counter", message.StateMap{"count": message.String("1")}))
	render := recvServer(t, clientConn)
	doc, ok := render.AsRender()
	require.True(t, ok)
	text, _, _ := doc.Node.AsText()
	assert.Equal(t, "Count: 1", text)

	clientConn.Close()
	require.NoError(t, <-done)
}

func TestDispatchRouteNotFoundThenRecovers(t *testing.T) {
	app := NewApplication(message.NewCapabilitySet())
	app.AddRoute(helloRoute{})
	clientConn, done := pipeServer(t, app)
	defer clientConn.Close()

	sendClient(t, clientConn, message.NewClientHello(message.NewCapabilitySet(message.CoreV1)))
	recvServer(t, clientConn)

	sendClient(t, clientConn, message.NewLoad("/nonexistent", message.StateMap{}))
	errMsg := recvServer(t, clientConn)
	code, text, ok := errMsg.AsError()
	require.True(t, ok)
	assert.Equal(t, message.NotFound, code)
	assert.Contains(t, text, "/nonexistent")

	sendClient(t, clientConn, message.NewLoad("/hello", message.StateMap{}))
	reply := recvServer(t, clientConn)
	_, ok = reply.AsRender()
	assert.True(t, ok)

	clientConn.Close()
	require.NoError(t, <-done)
}

func TestDispatchRejectsMessageBeforeClientHello(t *testing.T) {
	app := NewApplication(message.NewCapabilitySet())
	app.AddRoute(helloRoute{})
	clientConn, done := pipeServer(t, app)
	defer clientConn.Close()

	sendClient(t, clientConn, message.NewLoad("/hello", message.StateMap{}))
	errMsg := recvServer(t, clientConn)
	code, _, ok := errMsg.AsError()
	require.True(t, ok)
	assert.Equal(t, message.BadRequest, code)

	err := <-done
	require.ErrorIs(t, err, ErrClientHelloRequired)
}

type gatedRoute struct{}

func (gatedRoute) Path() string { return "/admin" }
func (gatedRoute) Action(_ message.Action, _ map[string]string, ctx *Context) error {
	return ctx.AssertCapability("pinhole:admin:v1")
}
func (gatedRoute) Render(map[string]string, message.StateMap) (Render, error) {
	return RenderDocument(message.Document{}), nil
}

func TestDispatchAssertCapabilityPoisonsConnection(t *testing.T) {
	app := NewApplication(message.NewCapabilitySet())
	app.AddRoute(gatedRoute{})
	clientConn, done := pipeServer(t, app)
	defer clientConn.Close()

	sendClient(t, clientConn, message.NewClientHello(message.NewCapabilitySet(message.CoreV1)))
	recvServer(t, clientConn)

	sendClient(t, clientConn, message.NewClientAction("/admin", message.NewAction("do", nil), message.StateMap{}))
	errMsg := recvServer(t, clientConn)
	code, _, ok := errMsg.AsError()
	require.True(t, ok)
	assert.Equal(t, message.UpgradeRequired, code)

	err := <-done
	var capErr *missingCapabilityError
	require.ErrorAs(t, err, &capErr)
}
