package rcon

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// FrameReader turns a byte stream into discrete protocol frames. The stream
// preserves byte order but not message boundaries: one frame may arrive
// across many reads, several frames may arrive in one read, and the length
// prefix itself may be split. The reader accumulates bytes until a full
// frame is buffered, then slices exactly that frame off and keeps the
// remainder for the next call.
type FrameReader struct {
	r       io.Reader
	buf     []byte
	max     int32
	scratch [4096]byte
}

// NewFrameReader wraps r. A maxFrame of zero falls back to
// DefaultMaxFrameSize; declared lengths above the limit fail fast with
// ErrDecode instead of triggering unbounded buffering.
func NewFrameReader(r io.Reader, maxFrame int32) *FrameReader {
	if maxFrame <= 0 {
		maxFrame = DefaultMaxFrameSize
	}
	return &FrameReader{r: r, max: maxFrame}
}

// Next blocks until one complete frame is available and returns its decoded
// packet. It returns io.EOF when the transport closes cleanly between
// frames, ErrTransport when a read fails or the transport closes mid-frame,
// and ErrDecode when the declared length is implausible.
func (fr *FrameReader) Next() (Packet, error) {
	for len(fr.buf) < 4 {
		if err := fr.fill(); err != nil {
			if err == io.EOF && len(fr.buf) == 0 {
				return Packet{}, io.EOF
			}
			return Packet{}, err
		}
	}

	size := int32(binary.LittleEndian.Uint32(fr.buf))
	if size < WrapperSize || size > fr.max {
		return Packet{}, fmt.Errorf("%w: declared length %d outside [%d, %d]", ErrDecode, size, WrapperSize, fr.max)
	}

	total := int(size) + 4
	for len(fr.buf) < total {
		if err := fr.fill(); err != nil {
			return Packet{}, err
		}
	}

	p, err := Decode(fr.buf[:total])
	if err != nil {
		return Packet{}, err
	}
	fr.buf = append(fr.buf[:0], fr.buf[total:]...)
	return p, nil
}

// fill performs one read against the transport and appends whatever arrived.
// An EOF after partial bytes of a frame have been buffered is a mid-frame
// close and reported as a transport failure.
func (fr *FrameReader) fill() error {
	n, err := fr.r.Read(fr.scratch[:])
	if n > 0 {
		fr.buf = append(fr.buf, fr.scratch[:n]...)
		return nil
	}
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) {
		if len(fr.buf) == 0 {
			return io.EOF
		}
		return fmt.Errorf("%w: %w", ErrTransport, io.ErrUnexpectedEOF)
	}
	return fmt.Errorf("%w: %w", ErrTransport, err)
}
