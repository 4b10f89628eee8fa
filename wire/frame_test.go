package wire

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFrameReadFrameRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{name: "empty payload", payload: []byte{}},
		{name: "small payload", payload: []byte("hello")},
		{name: "binary payload", payload: bytes.Repeat([]byte{0xAB}, 4096)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteFrame(&buf, tt.payload))

			got, err := ReadFrame(&buf)
			require.NoError(t, err)
			if len(tt.payload) == 0 {
				assert.Nil(t, got)
			} else {
				assert.Equal(t, tt.payload, got)
			}
		})
	}
}

func TestReadFrameCleanEOF(t *testing.T) {
	r := bytes.NewReader(nil)
	got, err := ReadFrame(r)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReadFrameZeroLengthIsCleanDrain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, nil))
	buf.WriteByte(0xFF) // trailing garbage must never be consumed

	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, buf.Len())
}

func TestReadFrameTooLarge(t *testing.T) {
	var buf bytes.Buffer
	lengthBuf := make([]byte, 4)
	const oversized = 11 * 1024 * 1024
	lengthBuf[0] = byte(oversized)
	lengthBuf[1] = byte(oversized >> 8)
	lengthBuf[2] = byte(oversized >> 16)
	lengthBuf[3] = byte(oversized >> 24)
	buf.Write(lengthBuf)

	_, err := ReadFrame(&buf)
	require.Error(t, err)

	var tooLarge *MessageTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, uint32(oversized), tooLarge.Size)
	assert.Equal(t, uint32(MaxFrameSize), tooLarge.Max)
}

func TestReadFrameTruncatedLengthPrefixIsFatal(t *testing.T) {
	buf := bytes.NewReader([]byte{0x05, 0x00})
	_, err := ReadFrame(buf)
	require.Error(t, err)

	var ioErr *IoError
	require.ErrorAs(t, err, &ioErr)
}

func TestReadFrameTruncatedPayloadIsFatal(t *testing.T) {
	var buf bytes.Buffer
	lengthBuf := make([]byte, 4)
	lengthBuf[0] = 10
	buf.Write(lengthBuf)
	buf.WriteString("abc") // declared 10 bytes, only 3 present

	_, err := ReadFrame(&buf)
	require.Error(t, err)
	var ioErr *IoError
	require.ErrorAs(t, err, &ioErr)
}

type errWriter struct{ err error }

func (w errWriter) Write(p []byte) (int, error) { return 0, w.err }

func TestWriteFrameWrapsWriteError(t *testing.T) {
	w := errWriter{err: io.ErrClosedPipe}
	err := WriteFrame(w, []byte("x"))
	require.Error(t, err)
	var ioErr *IoError
	require.ErrorAs(t, err, &ioErr)
}
