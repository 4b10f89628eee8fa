package message

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ClientToServerMessage is the envelope for every message a client may
// send. Exactly one of ClientHello, Load, or Action is set, matching
// whichever constructor built it.
type ClientToServerMessage struct {
	kind         c2sKind
	clientHello  clientHelloPayload
	load         loadPayload
	action       actionMsgPayload
}

type c2sKind int

const (
	c2sClientHello c2sKind = iota
	c2sLoad
	c2sAction
)

type clientHelloPayload struct {
	Capabilities CapabilitySet `cbor:"capabilities"`
}

type loadPayload struct {
	Path    string   `cbor:"path"`
	Storage StateMap `cbor:"storage"`
}

type actionMsgPayload struct {
	Path    string   `cbor:"path"`
	Action  Action   `cbor:"action"`
	Storage StateMap `cbor:"storage"`
}

// NewClientHello builds the mandatory first message of a connection,
// advertising the capabilities the client supports.
func NewClientHello(capabilities CapabilitySet) ClientToServerMessage {
	return ClientToServerMessage{kind: c2sClientHello, clientHello: clientHelloPayload{Capabilities: capabilities}}
}

// NewLoad builds a request to render path, with the client's current
// view of the requested storage keys attached.
func NewLoad(path string, storage StateMap) ClientToServerMessage {
	return ClientToServerMessage{kind: c2sLoad, load: loadPayload{Path: path, Storage: storage}}
}

// NewClientAction builds a request to dispatch action against path,
// with the captured storage values the action's Keys asked for.
func NewClientAction(path string, action Action, storage StateMap) ClientToServerMessage {
	return ClientToServerMessage{kind: c2sAction, action: actionMsgPayload{Path: path, Action: action, Storage: storage}}
}

func (m ClientToServerMessage) Kind() string {
	switch m.kind {
	case c2sClientHello:
		return "ClientHello"
	case c2sLoad:
		return "Load"
	case c2sAction:
		return "Action"
	default:
		return fmt.Sprintf("ClientToServerMessage(%d)", int(m.kind))
	}
}

// AsClientHello returns the ClientHello payload, if m is one.
func (m ClientToServerMessage) AsClientHello() (CapabilitySet, bool) {
	if m.kind != c2sClientHello {
		return CapabilitySet{}, false
	}
	return m.clientHello.Capabilities, true
}

// AsLoad returns the Load payload, if m is one.
func (m ClientToServerMessage) AsLoad() (path string, storage StateMap, ok bool) {
	if m.kind != c2sLoad {
		return "", nil, false
	}
	return m.load.Path, m.load.Storage, true
}

// AsAction returns the Action payload, if m is one.
func (m ClientToServerMessage) AsAction() (path string, action Action, storage StateMap, ok bool) {
	if m.kind != c2sAction {
		return "", Action{}, nil, false
	}
	return m.action.Path, m.action.Action, m.action.Storage, true
}

func (m ClientToServerMessage) MarshalCBOR() ([]byte, error) {
	switch m.kind {
	case c2sClientHello:
		return marshalValueVariant("ClientHello", m.clientHello)
	case c2sLoad:
		return marshalValueVariant("Load", m.load)
	case c2sAction:
		return marshalValueVariant("Action", m.action)
	default:
		return nil, fmt.Errorf("message: unknown ClientToServerMessage kind %d", m.kind)
	}
}

func (m *ClientToServerMessage) UnmarshalCBOR(data []byte) error {
	name, payload, isUnit, err := decodeVariant(data)
	if err != nil {
		return fmt.Errorf("message: decode ClientToServerMessage: %w", err)
	}
	if isUnit {
		return fmt.Errorf("message: unknown ClientToServerMessage unit variant %q", name)
	}

	switch name {
	case "ClientHello":
		var p clientHelloPayload
		if err := cbor.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("message: decode ClientHello: %w", err)
		}
		*m = ClientToServerMessage{kind: c2sClientHello, clientHello: p}
	case "Load":
		var p loadPayload
		if err := cbor.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("message: decode Load: %w", err)
		}
		*m = ClientToServerMessage{kind: c2sLoad, load: p}
	case "Action":
		var p actionMsgPayload
		if err := cbor.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("message: decode Action: %w", err)
		}
		*m = ClientToServerMessage{kind: c2sAction, action: p}
	default:
		return fmt.Errorf("message: unknown ClientToServerMessage variant %q", name)
	}
	return nil
}

// ServerToClientMessage is the envelope for every message a server may
// send. Exactly one field is populated, matching whichever constructor
// built it.
type ServerToClientMessage struct {
	kind       s2cKind
	serverHello serverHelloPayload
	render     renderPayload
	redirectTo redirectToPayload
	store      storePayload
	errMsg     errorPayload
}

type s2cKind int

const (
	s2cServerHello s2cKind = iota
	s2cRender
	s2cRedirectTo
	s2cStore
	s2cError
)

type serverHelloPayload struct {
	Capabilities CapabilitySet `cbor:"capabilities"`
}

type renderPayload struct {
	Document Document `cbor:"document"`
}

type redirectToPayload struct {
	Path string `cbor:"path"`
}

type storePayload struct {
	Scope StorageScope `cbor:"scope"`
	Key   string       `cbor:"key"`
	Value StateValue   `cbor:"value"`
}

type errorPayload struct {
	Code    ErrorCode `cbor:"code"`
	Message string    `cbor:"message"`
}

// NewServerHello builds the server's response to ClientHello, carrying
// the negotiated (intersected) capability set.
func NewServerHello(capabilities CapabilitySet) ServerToClientMessage {
	return ServerToClientMessage{kind: s2cServerHello, serverHello: serverHelloPayload{Capabilities: capabilities}}
}

// NewRender builds a message carrying a fully rendered document.
func NewRender(doc Document) ServerToClientMessage {
	return ServerToClientMessage{kind: s2cRender, render: renderPayload{Document: doc}}
}

// NewRedirectTo builds a message instructing the client to navigate to
// a different path, as if the user had requested it directly.
func NewRedirectTo(path string) ServerToClientMessage {
	return ServerToClientMessage{kind: s2cRedirectTo, redirectTo: redirectToPayload{Path: path}}
}

// NewStore builds a message instructing the client to persist a value
// under key in the given scope.
func NewStore(scope StorageScope, key string, value StateValue) ServerToClientMessage {
	return ServerToClientMessage{kind: s2cStore, store: storePayload{Scope: scope, Key: key, Value: value}}
}

// NewError builds a message reporting a protocol or application error.
func NewError(code ErrorCode, msg string) ServerToClientMessage {
	return ServerToClientMessage{kind: s2cError, errMsg: errorPayload{Code: code, Message: msg}}
}

func (m ServerToClientMessage) Kind() string {
	switch m.kind {
	case s2cServerHello:
		return "ServerHello"
	case s2cRender:
		return "Render"
	case s2cRedirectTo:
		return "RedirectTo"
	case s2cStore:
		return "Store"
	case s2cError:
		return "Error"
	default:
		return fmt.Sprintf("ServerToClientMessage(%d)", int(m.kind))
	}
}

func (m ServerToClientMessage) AsServerHello() (CapabilitySet, bool) {
	if m.kind != s2cServerHello {
		return CapabilitySet{}, false
	}
	return m.serverHello.Capabilities, true
}

func (m ServerToClientMessage) AsRender() (Document, bool) {
	if m.kind != s2cRender {
		return Document{}, false
	}
	return m.render.Document, true
}

func (m ServerToClientMessage) AsRedirectTo() (string, bool) {
	if m.kind != s2cRedirectTo {
		return "", false
	}
	return m.redirectTo.Path, true
}

func (m ServerToClientMessage) AsStore() (scope StorageScope, key string, value StateValue, ok bool) {
	if m.kind != s2cStore {
		return 0, "", StateValue{}, false
	}
	return m.store.Scope, m.store.Key, m.store.Value, true
}

func (m ServerToClientMessage) AsError() (code ErrorCode, msg string, ok bool) {
	if m.kind != s2cError {
		return 0, "", false
	}
	return m.errMsg.Code, m.errMsg.Message, true
}

func (m ServerToClientMessage) MarshalCBOR() ([]byte, error) {
	switch m.kind {
	case s2cServerHello:
		return marshalValueVariant("ServerHello", m.serverHello)
	case s2cRender:
		return marshalValueVariant("Render", m.render)
	case s2cRedirectTo:
		return marshalValueVariant("RedirectTo", m.redirectTo)
	case s2cStore:
		return marshalValueVariant("Store", m.store)
	case s2cError:
		return marshalValueVariant("Error", m.errMsg)
	default:
		return nil, fmt.Errorf("message: unknown ServerToClientMessage kind %d", m.kind)
	}
}

func (m *ServerToClientMessage) UnmarshalCBOR(data []byte) error {
	name, payload, isUnit, err := decodeVariant(data)
	if err != nil {
		return fmt.Errorf("message: decode ServerToClientMessage: %w", err)
	}
	if isUnit {
		return fmt.Errorf("message: unknown ServerToClientMessage unit variant %q", name)
	}

	switch name {
	case "ServerHello":
		var p serverHelloPayload
		if err := cbor.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("message: decode ServerHello: %w", err)
		}
		*m = ServerToClientMessage{kind: s2cServerHello, serverHello: p}
	case "Render":
		var p renderPayload
		if err := cbor.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("message: decode Render: %w", err)
		}
		*m = ServerToClientMessage{kind: s2cRender, render: p}
	case "RedirectTo":
		var p redirectToPayload
		if err := cbor.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("message: decode RedirectTo: %w", err)
		}
		*m = ServerToClientMessage{kind: s2cRedirectTo, redirectTo: p}
	case "Store":
		var p storePayload
		if err := cbor.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("message: decode Store: %w", err)
		}
		*m = ServerToClientMessage{kind: s2cStore, store: p}
	case "Error":
		var p errorPayload
		if err := cbor.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("message: decode Error: %w", err)
		}
		*m = ServerToClientMessage{kind: s2cError, errMsg: p}
	default:
		return fmt.Errorf("message: unknown ServerToClientMessage variant %q", name)
	}
	return nil
}
