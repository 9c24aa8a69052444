// Package wire implements the fixed-record binary framing shared with the
// original messenger clients.
//
// The on-wire unit is a byte-exact image of the C struct the first client
// generation exchanged:
//
//	struct Message {
//	    int  type;            // 4 bytes, host (little-endian) order
//	    char username[32];    // NUL-padded, NUL-terminated when shorter
//	    char content[4096];   // same padding rule
//	};
//
// There is no delimiter and no length prefix: a reader always consumes one
// full 4132-byte record before interpreting it. A short read mid-record is
// fatal for the session that produced it.
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Field sizes of the wire record. These are a compatibility contract with
// deployed clients and must never change.
const (
	TypeSize     = 4
	UsernameSize = 32
	ContentSize  = 4096

	// FrameSize is the exact byte count of one record on the wire.
	FrameSize = TypeSize + UsernameSize + ContentSize
)

// Frame type codes. The values are the authoritative wire enumeration; gaps
// are reserved by retired client variants.
const (
	MsgText       int32 = 1 // chat text, both directions
	MsgUsername   int32 = 2 // legacy username-only auth, client to server
	MsgDisconnect int32 = 3 // graceful disconnect, client to server
	MsgUserList   int32 = 4 // connected-users listing, server to client (legacy)

	MsgRegister       int32 = 10
	MsgLogin          int32 = 11
	MsgAuthResponse   int32 = 12 // content[0] is 1 for success, 0 for failure
	MsgChangePassword int32 = 13
	MsgDeleteAccount  int32 = 14

	MsgFriendRequest     int32 = 20
	MsgFriendAccept      int32 = 21
	MsgFriendRefuse      int32 = 22
	MsgFriendListRequest int32 = 23
	MsgFriendListReply   int32 = 24
	MsgFriendRemove      int32 = 25

	MsgAllUsersStatusRequest int32 = 26
	MsgAllUsersStatusReply   int32 = 27

	MsgDirectMessage  int32 = 28
	MsgHistoryRequest int32 = 29
	MsgHistoryReply   int32 = 30

	MsgGroupCreate         int32 = 40
	MsgGroupCreateReply    int32 = 41
	MsgGroupAdd            int32 = 42
	MsgGroupRemove         int32 = 43
	MsgGroupLeave          int32 = 44
	MsgGroupMessage        int32 = 45
	MsgGroupText           int32 = 46 // server to client only
	MsgGroupHistoryRequest int32 = 47
	MsgGroupHistoryReply   int32 = 48
	MsgGroupListRequest    int32 = 49
	MsgGroupListReply      int32 = 50

	// Next free codes after the last deployed client variant.
	MsgGroupMembersRequest int32 = 51
	MsgGroupMembersReply   int32 = 52
)

// Auth response bytes carried in content[0] of an AuthResponse frame.
const (
	AuthSuccess byte = 1
	AuthFailure byte = 0
)

// ServerName is the username stamped on frames originated by the server.
const ServerName = "Server"

// Frame is the decoded form of one wire record. Username and Content hold
// the text up to the first NUL of the corresponding fixed field.
type Frame struct {
	Type     int32
	Username string
	Content  string
}

// Encode serializes the frame into an exact FrameSize-byte record. Text
// fields longer than their capacity minus one are truncated so the trailing
// NUL terminator survives, matching the strncpy behavior of the original
// clients.
func Encode(f Frame) []byte {
	buf := make([]byte, FrameSize)
	binary.LittleEndian.PutUint32(buf[:TypeSize], uint32(f.Type))
	putPadded(buf[TypeSize:TypeSize+UsernameSize], f.Username)
	putPadded(buf[TypeSize+UsernameSize:], f.Content)
	return buf
}

// Decode parses one FrameSize-byte record. It returns an error when given a
// buffer of any other length; partial records must never be interpreted.
func Decode(buf []byte) (Frame, error) {
	if len(buf) != FrameSize {
		return Frame{}, fmt.Errorf("wire: record is %d bytes, want %d", len(buf), FrameSize)
	}
	return Frame{
		Type:     int32(binary.LittleEndian.Uint32(buf[:TypeSize])),
		Username: cString(buf[TypeSize : TypeSize+UsernameSize]),
		Content:  cString(buf[TypeSize+UsernameSize:]),
	}, nil
}

// ReadFrame reads exactly one record from r. io.EOF is returned unchanged
// when the peer closed the connection cleanly between records; an EOF in the
// middle of a record surfaces as io.ErrUnexpectedEOF.
func ReadFrame(r io.Reader) (Frame, error) {
	buf := make([]byte, FrameSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Frame{}, err
	}
	return Decode(buf)
}

// WriteFrame writes exactly one record to w.
func WriteFrame(w io.Writer, f Frame) error {
	_, err := w.Write(Encode(f))
	return err
}

// AuthResponse builds the one-byte success/failure reply used throughout the
// auth gate and for operation acknowledgements.
func AuthResponse(ok bool) Frame {
	b := AuthFailure
	if ok {
		b = AuthSuccess
	}
	return Frame{Type: MsgAuthResponse, Username: ServerName, Content: string([]byte{b})}
}

// IsAuthSuccess reports whether an auth-response frame carries the success byte.
func IsAuthSuccess(f Frame) bool {
	return len(f.Content) > 0 && f.Content[0] == AuthSuccess
}

func putPadded(dst []byte, s string) {
	n := len(s)
	if n > len(dst)-1 {
		n = len(dst) - 1
	}
	copy(dst, s[:n])
	// Remaining bytes are already zero in a fresh buffer.
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
