package wire

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameSize(t *testing.T) {
	// The record layout is a compatibility contract with deployed clients.
	require.Equal(t, 4132, FrameSize)
	require.Len(t, Encode(Frame{}), FrameSize)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	f := Frame{Type: MsgDirectMessage, Username: "bob", Content: "hello"}

	buf := Encode(f)
	got, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, f, got)
}

func TestEncodeLayout(t *testing.T) {
	buf := Encode(Frame{Type: MsgLogin, Username: "alice", Content: "pw"})

	assert.Equal(t, uint32(MsgLogin), binary.LittleEndian.Uint32(buf[:4]))
	assert.Equal(t, byte('a'), buf[4])
	assert.Equal(t, byte(0), buf[4+5], "username must be NUL-terminated")
	assert.Equal(t, byte('p'), buf[36])
	assert.Equal(t, byte(0), buf[36+2], "content must be NUL-terminated")
}

func TestEncodeTruncatesToCapacityMinusOne(t *testing.T) {
	longName := strings.Repeat("u", 100)
	longBody := strings.Repeat("x", ContentSize+10)

	got, err := Decode(Encode(Frame{Type: MsgText, Username: longName, Content: longBody}))
	require.NoError(t, err)
	assert.Len(t, got.Username, UsernameSize-1)
	assert.Len(t, got.Content, ContentSize-1)
}

func TestDecodeRejectsWrongSize(t *testing.T) {
	_, err := Decode(make([]byte, FrameSize-1))
	assert.Error(t, err)

	_, err = Decode(make([]byte, FrameSize+1))
	assert.Error(t, err)
}

func TestReadFrame(t *testing.T) {
	t.Run("full record", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteFrame(&buf, Frame{Type: MsgText, Username: "alice", Content: "hi"}))

		f, err := ReadFrame(&buf)
		require.NoError(t, err)
		assert.Equal(t, MsgText, f.Type)
		assert.Equal(t, "alice", f.Username)
		assert.Equal(t, "hi", f.Content)
	})

	t.Run("clean EOF between records", func(t *testing.T) {
		_, err := ReadFrame(bytes.NewReader(nil))
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("short read mid-record is fatal", func(t *testing.T) {
		_, err := ReadFrame(bytes.NewReader(Encode(Frame{})[:100]))
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
}

func TestAuthResponse(t *testing.T) {
	ok := AuthResponse(true)
	assert.Equal(t, MsgAuthResponse, ok.Type)
	assert.Equal(t, ServerName, ok.Username)
	assert.True(t, IsAuthSuccess(ok))

	fail, err := Decode(Encode(AuthResponse(false)))
	require.NoError(t, err)
	assert.False(t, IsAuthSuccess(fail), "failure byte is NUL and folds into padding")
}
