package message

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// variantMapHeader is the definite-length CBOR map header for exactly one
// key/value pair (major type 5, additional info 1): 0xA0 | 1.
const variantMapHeader = 0xA1

// marshalUnitVariant encodes a tag-only enum variant as a bare CBOR text
// string, matching serde's externally-tagged representation for variants
// carrying no data (e.g. StateValue::Empty, StorageScope::Session).
func marshalUnitVariant(name string) ([]byte, error) {
	return cbor.Marshal(name)
}

// marshalValueVariant encodes a data-carrying enum variant as a
// single-key CBOR map {name: value}, matching serde's externally-tagged
// representation for newtype and single/multi-field struct variants.
func marshalValueVariant(name string, value any) ([]byte, error) {
	keyBytes, err := cbor.Marshal(name)
	if err != nil {
		return nil, fmt.Errorf("message: encode variant tag %q: %w", name, err)
	}
	valueBytes, err := cbor.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("message: encode variant %q payload: %w", name, err)
	}

	out := make([]byte, 0, 1+len(keyBytes)+len(valueBytes))
	out = append(out, variantMapHeader)
	out = append(out, keyBytes...)
	out = append(out, valueBytes...)
	return out, nil
}

// decodeVariant classifies a frame as either a bare unit-variant string or
// a single-key variant map, returning the variant tag and (for value
// variants) the still-encoded payload bytes for the caller to decode into
// the right Go type.
func decodeVariant(data []byte) (name string, payload cbor.RawMessage, isUnit bool, err error) {
	var unit string
	if uerr := cbor.Unmarshal(data, &unit); uerr == nil {
		return unit, nil, true, nil
	}

	var m map[string]cbor.RawMessage
	if merr := cbor.Unmarshal(data, &m); merr != nil {
		return "", nil, false, fmt.Errorf("message: not a valid variant encoding: %w", merr)
	}
	if len(m) != 1 {
		return "", nil, false, fmt.Errorf("message: expected single-key variant map, got %d keys", len(m))
	}

	for k, v := range m {
		return k, v, false, nil
	}
	panic("unreachable")
}
