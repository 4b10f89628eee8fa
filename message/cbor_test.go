package message

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateValueEmptyMatchesReferenceBytes(t *testing.T) {
	got, err := cbor.Marshal(Empty())
	require.NoError(t, err)
	assert.Equal(t, []byte{0x65, 0x45, 0x6d, 0x70, 0x74, 0x79}, got)
}

func TestStateValueBooleanMatchesReferenceBytes(t *testing.T) {
	got, err := cbor.Marshal(Boolean(true))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xa1, 0x67, 0x42, 0x6f, 0x6f, 0x6c, 0x65, 0x61, 0x6e, 0xf5}, got)
}

func TestStateValueStringMatchesReferenceBytes(t *testing.T) {
	got, err := cbor.Marshal(String("test"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xa1, 0x66, 0x53, 0x74, 0x72, 0x69, 0x6e, 0x67, 0x64, 0x74, 0x65, 0x73, 0x74}, got)
}

func TestStorageScopeSessionMatchesReferenceBytes(t *testing.T) {
	got, err := cbor.Marshal(Session)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x67, 0x53, 0x65, 0x73, 0x73, 0x69, 0x6f, 0x6e}, got)
}

func TestServerToClientRedirectToMatchesReferenceBytes(t *testing.T) {
	got, err := cbor.Marshal(NewRedirectTo("/login"))
	require.NoError(t, err)
	want := []byte{
		0xa1, 0x6a, 0x52, 0x65, 0x64, 0x69, 0x72, 0x65, 0x63, 0x74, 0x54, 0x6f,
		0xa1, 0x64, 0x70, 0x61, 0x74, 0x68, 0x66, 0x2f, 0x6c, 0x6f, 0x67, 0x69, 0x6e,
	}
	assert.Equal(t, want, got)
}

func TestStateValueRoundTrip(t *testing.T) {
	values := []StateValue{
		Empty(),
		Null(),
		Boolean(true),
		Boolean(false),
		Number(3.5),
		String("hello"),
		Array([]StateValue{Number(1), String("two")}),
		Object(StateMap{"a": Boolean(true), "b": Null()}),
	}

	for _, v := range values {
		encoded, err := cbor.Marshal(v)
		require.NoError(t, err)

		var decoded StateValue
		require.NoError(t, cbor.Unmarshal(encoded, &decoded))
		assert.True(t, v.Equal(decoded), "round trip mismatch for %#v", v)
	}
}

func TestStorageScopeRoundTrip(t *testing.T) {
	for _, s := range []StorageScope{Persistent, Session, Local} {
		encoded, err := cbor.Marshal(s)
		require.NoError(t, err)

		var decoded StorageScope
		require.NoError(t, cbor.Unmarshal(encoded, &decoded))
		assert.Equal(t, s, decoded)
	}
}

func TestClientToServerMessageRoundTrip(t *testing.T) {
	msgs := []ClientToServerMessage{
		NewClientHello(SupportedCapabilities()),
		NewLoad("/home", StateMap{"count": Number(1)}),
		NewClientAction("/home", NewAction("increment", nil).WithKeys("count"), StateMap{"count": Number(1)}),
	}

	for _, m := range msgs {
		encoded, err := cbor.Marshal(m)
		require.NoError(t, err)

		var decoded ClientToServerMessage
		require.NoError(t, cbor.Unmarshal(encoded, &decoded))
		assert.Equal(t, m.Kind(), decoded.Kind())
	}
}

func TestServerToClientMessageRoundTrip(t *testing.T) {
	doc := Document{
		Node:       NewText("hi"),
		Stylesheet: Stylesheet{},
	}
	msgs := []ServerToClientMessage{
		NewServerHello(SupportedCapabilities()),
		NewRender(doc),
		NewRedirectTo("/login"),
		NewStore(Session, "count", Number(2)),
		NewError(NotFound, "no such route"),
	}

	for _, m := range msgs {
		encoded, err := cbor.Marshal(m)
		require.NoError(t, err)

		var decoded ServerToClientMessage
		require.NoError(t, cbor.Unmarshal(encoded, &decoded))
		assert.Equal(t, m.Kind(), decoded.Kind())
	}
}

func TestCapabilitySetIntersect(t *testing.T) {
	a := NewCapabilitySet("x", "y")
	b := NewCapabilitySet("y", "z")
	got := a.Intersect(b)
	assert.Equal(t, 1, got.Len())
	assert.True(t, got.Contains("y"))
}
