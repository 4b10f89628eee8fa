package wire

import (
	"io"

	"github.com/fxamacker/cbor/v2"
)

// EncodeFrame CBOR-encodes v (which must implement cbor.Marshaler, as
// every message type in the message package does) and writes it as a
// single length-prefixed frame.
func EncodeFrame(w io.Writer, v interface{}) error {
	payload, err := cbor.Marshal(v)
	if err != nil {
		return &SerializationError{Op: "encode", Err: err}
	}
	return WriteFrame(w, payload)
}

// DecodeFrame reads one length-prefixed frame and CBOR-decodes it into
// v. ok is false with a nil error when the stream was cleanly drained
// (see ReadFrame), in which case v is left untouched.
func DecodeFrame(r io.Reader, v interface{}) (ok bool, err error) {
	payload, err := ReadFrame(r)
	if err != nil {
		return false, err
	}
	if payload == nil {
		return false, nil
	}
	if err := cbor.Unmarshal(payload, v); err != nil {
		return false, &SerializationError{Op: "decode", Err: err}
	}
	return true, nil
}
