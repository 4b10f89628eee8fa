package message

// Action describes a client-triggered event: its name, the literal
// arguments bound at declaration time, and the list of storage keys
// whose current values should be captured and sent alongside it.
type Action struct {
	Name string            `cbor:"name"`
	Args map[string]string `cbor:"args"`
	Keys []string          `cbor:"keys"`
}

// NewAction builds an Action with no captured storage keys.
func NewAction(name string, args map[string]string) Action {
	return Action{Name: name, Args: args}
}

// WithKeys returns a copy of a with the given storage keys attached for
// capture at dispatch time.
func (a Action) WithKeys(keys ...string) Action {
	a.Keys = keys
	return a
}
