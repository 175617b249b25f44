package rcon_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/gamehost-labs/rconctl/pkg/rcon"
)

// chunkReader delivers a byte stream one predetermined chunk at a time,
// simulating arbitrary transport fragmentation and coalescing.
type chunkReader struct {
	chunks [][]byte
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	if n < len(r.chunks[0]) {
		r.chunks[0] = r.chunks[0][n:]
	} else {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

func chop(b []byte, size int) [][]byte {
	var chunks [][]byte
	for len(b) > 0 {
		n := size
		if n > len(b) {
			n = len(b)
		}
		chunks = append(chunks, b[:n])
		b = b[n:]
	}
	return chunks
}

func encodeAll(t *testing.T, packets []rcon.Packet) []byte {
	t.Helper()
	var stream bytes.Buffer
	for _, p := range packets {
		frame, err := rcon.Encode(p)
		if err != nil {
			t.Fatalf("Encode(%+v) returned error: %v", p, err)
		}
		stream.Write(frame)
	}
	return stream.Bytes()
}

func TestFrameReaderReassembly(t *testing.T) {
	want := []rcon.Packet{
		{ID: 1, Kind: rcon.KindResponseValue, Body: []byte("first")},
		{ID: 2, Kind: rcon.KindResponseValue},
		{ID: 3, Kind: rcon.KindResponseValue, Body: bytes.Repeat([]byte("long"), 500)},
		{ID: 4, Kind: rcon.KindAuthResponse},
	}
	stream := encodeAll(t, want)

	// Every chop size from one byte per read up to the whole stream in a
	// single read must yield the same packets in the same order.
	for _, size := range []int{1, 2, 3, 5, 7, 16, 64, 1024, len(stream)} {
		fr := rcon.NewFrameReader(&chunkReader{chunks: chop(stream, size)}, 0)
		for i, w := range want {
			got, err := fr.Next()
			if err != nil {
				t.Fatalf("chop %d: Next() %d returned error: %v", size, i, err)
			}
			if !got.Equal(w) {
				t.Fatalf("chop %d: packet %d mismatch: got %+v, want %+v", size, i, got, w)
			}
		}
		if _, err := fr.Next(); err != io.EOF {
			t.Fatalf("chop %d: expected io.EOF after final frame, got %v", size, err)
		}
	}
}

func TestFrameReaderSplitLengthPrefix(t *testing.T) {
	stream := encodeAll(t, []rcon.Packet{{ID: 12, Kind: rcon.KindResponseValue, Body: []byte("split")}})

	// Length prefix arrives two bytes at a time, body in one piece.
	fr := rcon.NewFrameReader(&chunkReader{chunks: [][]byte{stream[:2], stream[2:4], stream[4:]}}, 0)
	got, err := fr.Next()
	if err != nil {
		t.Fatalf("Next() returned error: %v", err)
	}
	if got.ID != 12 || string(got.Body) != "split" {
		t.Fatalf("unexpected packet %+v", got)
	}
}

func TestFrameReaderImplausibleLength(t *testing.T) {
	var b [8]byte
	binary.LittleEndian.PutUint32(b[:], 1<<30)

	fr := rcon.NewFrameReader(bytes.NewReader(b[:]), 0)
	if _, err := fr.Next(); !errors.Is(err, rcon.ErrDecode) {
		t.Fatalf("expected ErrDecode for corrupted length field, got %v", err)
	}
}

func TestFrameReaderMaxFrameOverride(t *testing.T) {
	big := rcon.Packet{ID: 1, Kind: rcon.KindResponseValue, Body: bytes.Repeat([]byte("a"), 100)}
	stream := encodeAll(t, []rcon.Packet{big})

	fr := rcon.NewFrameReader(bytes.NewReader(stream), 50)
	if _, err := fr.Next(); !errors.Is(err, rcon.ErrDecode) {
		t.Fatalf("expected ErrDecode above the configured limit, got %v", err)
	}
}

func TestFrameReaderMidFrameClose(t *testing.T) {
	stream := encodeAll(t, []rcon.Packet{{ID: 5, Kind: rcon.KindResponseValue, Body: []byte("interrupted")}})

	fr := rcon.NewFrameReader(bytes.NewReader(stream[:len(stream)-4]), 0)
	if _, err := fr.Next(); !errors.Is(err, rcon.ErrTransport) {
		t.Fatalf("expected ErrTransport for mid-frame close, got %v", err)
	}
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestFrameReaderReadError(t *testing.T) {
	wantCause := errors.New("connection reset by peer")
	fr := rcon.NewFrameReader(failingReader{err: wantCause}, 0)

	_, err := fr.Next()
	if !errors.Is(err, rcon.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if !errors.Is(err, wantCause) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
}
