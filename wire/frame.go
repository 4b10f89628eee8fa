package wire

import (
	"encoding/binary"
	"io"
)

// WriteFrame writes a length-prefixed frame: a little-endian uint32 byte
// count followed by payload. An empty (or nil) payload writes a zero
// length, which ReadFrame reports as a drained stream.
func WriteFrame(w io.Writer, payload []byte) error {
	var lengthBuf [4]byte
	binary.LittleEndian.PutUint32(lengthBuf[:], uint32(len(payload)))

	if _, err := w.Write(lengthBuf[:]); err != nil {
		return &IoError{Err: err}
	}

	if len(payload) == 0 {
		return nil
	}

	if _, err := w.Write(payload); err != nil {
		return &IoError{Err: err}
	}

	return nil
}

// ReadFrame reads one length-prefixed frame. A nil, nil return means the
// stream was cleanly drained (peer closed, or sent an explicit zero-length
// frame) and the connection should end without error. Any other error is
// fatal for the current connection.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lengthBuf [4]byte
	n, err := io.ReadFull(r, lengthBuf[:])
	if err != nil {
		if n == 0 && err == io.EOF {
			return nil, nil
		}
		return nil, &IoError{Err: err}
	}

	length := binary.LittleEndian.Uint32(lengthBuf[:])
	if length == 0 {
		return nil, nil
	}

	if length > MaxFrameSize {
		return nil, &MessageTooLargeError{Size: length, Max: MaxFrameSize}
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, &IoError{Err: err}
	}

	return payload, nil
}
