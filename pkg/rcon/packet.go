package rcon

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// WrapperSize is the number of non-body bytes covered by a frame's declared
// length: four bytes each for the packet id and kind, plus the two null bytes
// terminating the body and the packet. The length field itself is not
// included in its own count.
const WrapperSize = 8 + 2

// DefaultMaxFrameSize is the largest declared frame length accepted by
// default. The value comes from the Source RCON protocol; servers are not
// expected to emit larger frames, and a larger declared length almost always
// means a corrupted length field.
const DefaultMaxFrameSize = 4096

// Packet kinds. The wire value 2 is ambiguous: sent client to server it is
// an exec command, sent server to client it is an auth response. The session
// resolves the meaning from its connection phase; the raw integer alone is
// not a discriminator.
const (
	// KindResponseValue carries command output from the server.
	KindResponseValue int32 = 0

	// KindAuthResponse answers an auth request. An id of -1 signals that
	// the secret was rejected.
	KindAuthResponse int32 = 2

	// KindExecCommand carries a console command to the server.
	KindExecCommand int32 = 2

	// KindAuth carries the shared secret to the server.
	KindAuth int32 = 3
)

// Packet is the logical protocol unit, either a client request or a server
// response.
type Packet struct {
	// ID is a caller-chosen correlation token. Responses echo the id of the
	// request they answer, except a rejected auth which answers with -1.
	ID int32

	// Kind is one of the Kind constants above, interpreted per connection
	// phase.
	Kind int32

	// Body is the text payload. It may be empty, and must not contain a
	// null byte: the frame format terminates the body with one.
	Body []byte
}

// Equal reports whether two packets carry the same id, kind, and body.
func (p Packet) Equal(q Packet) bool {
	return p.ID == q.ID && p.Kind == q.Kind && bytes.Equal(p.Body, q.Body)
}

// Encode serializes p into its wire frame: a little-endian length prefix
// followed by id, kind, body, and two null terminators. It fails with
// ErrEncode when the body would push the declared length past
// DefaultMaxFrameSize.
func Encode(p Packet) ([]byte, error) {
	size := int32(len(p.Body) + WrapperSize)
	if size > DefaultMaxFrameSize {
		return nil, fmt.Errorf("%w: body of %d bytes exceeds frame limit", ErrEncode, len(p.Body))
	}

	buf := make([]byte, 0, int(size)+4)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(size))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(p.ID))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(p.Kind))
	buf = append(buf, p.Body...)
	buf = append(buf, 0, 0)
	return buf, nil
}

// Decode parses one wire frame from the front of b. It fails with ErrDecode
// when b is shorter than the declared length, the declared length is smaller
// than the fixed wrapper, or the frame is not terminated by two null bytes.
// Bytes past the declared frame are ignored.
func Decode(b []byte) (Packet, error) {
	var p Packet

	if len(b) < 4+WrapperSize {
		return p, fmt.Errorf("%w: %d bytes is below the minimum frame size", ErrDecode, len(b))
	}

	size := int32(binary.LittleEndian.Uint32(b))
	if size < WrapperSize {
		return p, fmt.Errorf("%w: declared length %d below wrapper size", ErrDecode, size)
	}
	if int(size)+4 > len(b) {
		return p, fmt.Errorf("%w: declared length %d exceeds buffered %d bytes", ErrDecode, size, len(b)-4)
	}

	p.ID = int32(binary.LittleEndian.Uint32(b[4:]))
	p.Kind = int32(binary.LittleEndian.Uint32(b[8:]))

	end := 4 + int(size)
	if b[end-2] != 0 || b[end-1] != 0 {
		return p, fmt.Errorf("%w: frame not null-terminated", ErrDecode)
	}
	if body := b[12 : end-2]; len(body) > 0 {
		p.Body = append([]byte(nil), body...)
	}
	return p, nil
}
