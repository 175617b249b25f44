package rcon_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/gamehost-labs/rconctl/pkg/rcon"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	packets := []rcon.Packet{
		{ID: 1, Kind: rcon.KindAuth, Body: []byte("hunter2")},
		{ID: 50, Kind: rcon.KindExecCommand, Body: []byte("saveworld")},
		{ID: 7, Kind: rcon.KindResponseValue, Body: []byte("World Saved")},
		{ID: 8, Kind: rcon.KindExecCommand},
		{ID: -1, Kind: rcon.KindAuthResponse},
		{ID: 2147483647, Kind: rcon.KindResponseValue, Body: []byte(strings.Repeat("x", 4000))},
	}

	for _, want := range packets {
		frame, err := rcon.Encode(want)
		if err != nil {
			t.Fatalf("Encode(%+v) returned error: %v", want, err)
		}

		wantLen := 4 + 4 + 4 + len(want.Body) + 2
		if len(frame) != wantLen {
			t.Fatalf("Encode(%+v) produced %d bytes, want %d", want, len(frame), wantLen)
		}
		declared := int32(binary.LittleEndian.Uint32(frame))
		if int(declared) != wantLen-4 {
			t.Fatalf("declared length %d, want %d", declared, wantLen-4)
		}
		if frame[len(frame)-1] != 0 || frame[len(frame)-2] != 0 {
			t.Fatalf("frame not terminated by two null bytes: % x", frame)
		}

		got, err := rcon.Decode(frame)
		if err != nil {
			t.Fatalf("Decode returned error: %v", err)
		}
		if !got.Equal(want) {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
		}
	}
}

func TestEncodeRejectsOversizedBody(t *testing.T) {
	p := rcon.Packet{
		ID:   1,
		Kind: rcon.KindExecCommand,
		Body: bytes.Repeat([]byte("a"), rcon.DefaultMaxFrameSize),
	}
	_, err := rcon.Encode(p)
	if !errors.Is(err, rcon.ErrEncode) {
		t.Fatalf("expected ErrEncode, got %v", err)
	}
}

func TestDecodeErrors(t *testing.T) {
	valid, err := rcon.Encode(rcon.Packet{ID: 3, Kind: rcon.KindResponseValue, Body: []byte("ok")})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	t.Run("truncated buffer", func(t *testing.T) {
		if _, err := rcon.Decode(valid[:len(valid)-3]); !errors.Is(err, rcon.ErrDecode) {
			t.Fatalf("expected ErrDecode, got %v", err)
		}
	})

	t.Run("below minimum frame", func(t *testing.T) {
		if _, err := rcon.Decode([]byte{1, 2, 3}); !errors.Is(err, rcon.ErrDecode) {
			t.Fatalf("expected ErrDecode, got %v", err)
		}
	})

	t.Run("declared length below wrapper", func(t *testing.T) {
		bad := append([]byte(nil), valid...)
		binary.LittleEndian.PutUint32(bad, 4)
		if _, err := rcon.Decode(bad); !errors.Is(err, rcon.ErrDecode) {
			t.Fatalf("expected ErrDecode, got %v", err)
		}
	})

	t.Run("missing terminators", func(t *testing.T) {
		bad := append([]byte(nil), valid...)
		bad[len(bad)-2] = 'x'
		if _, err := rcon.Decode(bad); !errors.Is(err, rcon.ErrDecode) {
			t.Fatalf("expected ErrDecode, got %v", err)
		}
	})
}

func TestDecodeIgnoresTrailingBytes(t *testing.T) {
	want := rcon.Packet{ID: 9, Kind: rcon.KindResponseValue, Body: []byte("partial")}
	frame, err := rcon.Encode(want)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	next, err := rcon.Encode(rcon.Packet{ID: 10, Kind: rcon.KindResponseValue})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	got, err := rcon.Decode(append(frame, next...))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if !got.Equal(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}
