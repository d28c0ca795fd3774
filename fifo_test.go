// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bmi160

import (
	"encoding/binary"
	"errors"
	"reflect"
	"testing"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func putAxes(b []byte, f Frame) {
	binary.LittleEndian.PutUint16(b[0:2], uint16(f.X))
	binary.LittleEndian.PutUint16(b[2:4], uint16(f.Y))
	binary.LittleEndian.PutUint16(b[4:6], uint16(f.Z))
}

// encodeFrame builds the wire form of a single headered frame.
func encodeFrame(t *testing.T, f Frame) []byte {
	t.Helper()
	switch f.Kind {
	case FrameAccel:
		b := make([]byte, 7)
		b[0] = 0x84
		putAxes(b[1:], f)
		return b
	case FrameGyro:
		b := make([]byte, 7)
		b[0] = 0x88
		putAxes(b[1:], f)
		return b
	case FrameMag:
		b := make([]byte, 9)
		b[0] = 0x90
		putAxes(b[1:], f)
		binary.LittleEndian.PutUint16(b[7:9], f.RHall)
		return b
	case FrameSensorTime:
		return []byte{0x44, byte(f.Time), byte(f.Time >> 8), byte(f.Time >> 16)}
	case FrameSkip:
		return []byte{0x40, f.Skipped}
	case FrameConfigChange:
		return []byte{0x48}
	}
	t.Fatalf("cannot encode frame kind %v", f.Kind)
	return nil
}

func TestDecodeFrames_Headered(t *testing.T) {
	cfg := FIFOConfig{Accel: true, Gyro: true, Mag: true, Header: true}
	for _, test := range []struct {
		name     string
		buf      []byte
		want     []Frame
		leftover []byte
	}{
		{
			name: "empty marker",
			buf:  []byte{0x80},
		},
		{
			name: "empty marker then padding",
			buf:  []byte{0x80, 0x00, 0x00, 0x00},
		},
		{
			name: "sensortime",
			buf:  []byte{0x44, 0x01, 0x02, 0x03},
			want: []Frame{{Kind: FrameSensorTime, Time: 0x030201}},
		},
		{
			name: "sensortime ends decoding",
			buf:  []byte{0x44, 0x01, 0x02, 0x03, 0x84, 0x01},
			want: []Frame{{Kind: FrameSensorTime, Time: 0x030201}},
		},
		{
			name: "skip frame",
			buf:  []byte{0x40, 0x05},
			want: []Frame{{Kind: FrameSkip, Skipped: 5}},
		},
		{
			name: "config change",
			buf:  []byte{0x48},
			want: []Frame{{Kind: FrameConfigChange}},
		},
		{
			name: "accel frame",
			buf:  []byte{0x84, 0x10, 0x00, 0x20, 0x00, 0x30, 0x00},
			want: []Frame{{Kind: FrameAccel, X: 16, Y: 32, Z: 48}},
		},
		{
			name: "negative axes",
			buf:  []byte{0x88, 0xFF, 0xFF, 0x00, 0x80, 0x01, 0x80},
			want: []Frame{{Kind: FrameGyro, X: -1, Y: -32768, Z: -32767}},
		},
		{
			name: "interrupt tag bits ignored",
			buf:  []byte{0x87, 0x10, 0x00, 0x20, 0x00, 0x30, 0x00},
			want: []Frame{{Kind: FrameAccel, X: 16, Y: 32, Z: 48}},
		},
		{
			name: "combined mag gyro accel",
			buf: append(append([]byte{0x9C},
				// mag 1,2,3 rhall 4, gyro 5,6,7, accel 8,9,10
				1, 0, 2, 0, 3, 0, 4, 0,
				5, 0, 6, 0, 7, 0),
				8, 0, 9, 0, 10, 0),
			want: []Frame{
				{Kind: FrameMag, X: 1, Y: 2, Z: 3, RHall: 4},
				{Kind: FrameGyro, X: 5, Y: 6, Z: 7},
				{Kind: FrameAccel, X: 8, Y: 9, Z: 10},
			},
		},
		{
			name:     "truncated frame becomes leftover",
			buf:      []byte{0x40, 0x01, 0x84, 0x10, 0x00},
			want:     []Frame{{Kind: FrameSkip, Skipped: 1}},
			leftover: []byte{0x84, 0x10, 0x00},
		},
		{
			name:     "lone truncated header",
			buf:      []byte{0x9C},
			leftover: []byte{0x9C},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			frames, leftover, err := DecodeFrames(test.buf, cfg, nil)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(frames, test.want) {
				t.Fatalf("frames: got %+v, want %+v", frames, test.want)
			}
			if !reflect.DeepEqual(leftover, test.leftover) {
				t.Fatalf("leftover: got %#v, want %#v", leftover, test.leftover)
			}
		})
	}
}

func TestDecodeFrames_MalformedHeader(t *testing.T) {
	cfg := FIFOConfig{Accel: true, Header: true}
	for _, test := range []struct {
		name   string
		buf    []byte
		want   []Frame
		offset int
		header byte
	}{
		{
			name:   "unknown low tag",
			buf:    []byte{0x20},
			offset: 0,
			header: 0x20,
		},
		{
			name:   "reserved high bits",
			buf:    []byte{0x84, 1, 0, 2, 0, 3, 0, 0xC4},
			want:   []Frame{{Kind: FrameAccel, X: 1, Y: 2, Z: 3}},
			offset: 7,
			header: 0xC4,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			frames, leftover, err := DecodeFrames(test.buf, cfg, nil)
			var mh *MalformedHeaderError
			if !errors.As(err, &mh) {
				t.Fatalf("expected MalformedHeaderError, got %v", err)
			}
			if mh.Offset != test.offset || mh.Header != test.header {
				t.Fatalf("got offset %d header %#02x, want offset %d header %#02x",
					mh.Offset, mh.Header, test.offset, test.header)
			}
			if !reflect.DeepEqual(frames, test.want) {
				t.Fatalf("partial frames: got %+v, want %+v", frames, test.want)
			}
			if leftover != nil {
				t.Fatalf("unexpected leftover %#v", leftover)
			}
		})
	}
}

func TestDecodeFrames_Headerless(t *testing.T) {
	for _, test := range []struct {
		name     string
		cfg      FIFOConfig
		buf      []byte
		want     []Frame
		leftover []byte
	}{
		{
			name: "accel only",
			cfg:  FIFOConfig{Accel: true},
			buf:  []byte{0x10, 0x00, 0x20, 0x00, 0x30, 0x00},
			want: []Frame{{Kind: FrameAccel, X: 16, Y: 32, Z: 48}},
		},
		{
			name: "gyro and accel",
			cfg:  FIFOConfig{Accel: true, Gyro: true},
			buf: []byte{
				1, 0, 2, 0, 3, 0,
				4, 0, 5, 0, 6, 0,
			},
			want: []Frame{
				{Kind: FrameGyro, X: 1, Y: 2, Z: 3},
				{Kind: FrameAccel, X: 4, Y: 5, Z: 6},
			},
		},
		{
			name: "all streams",
			cfg:  FIFOConfig{Accel: true, Gyro: true, Mag: true},
			buf: []byte{
				1, 0, 2, 0, 3, 0, 4, 0,
				5, 0, 6, 0, 7, 0,
				8, 0, 9, 0, 10, 0,
			},
			want: []Frame{
				{Kind: FrameMag, X: 1, Y: 2, Z: 3, RHall: 4},
				{Kind: FrameGyro, X: 5, Y: 6, Z: 7},
				{Kind: FrameAccel, X: 8, Y: 9, Z: 10},
			},
		},
		{
			name:     "truncated tail",
			cfg:      FIFOConfig{Accel: true},
			buf:      []byte{1, 0, 2, 0, 3, 0, 4, 0},
			want:     []Frame{{Kind: FrameAccel, X: 1, Y: 2, Z: 3}},
			leftover: []byte{4, 0},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			frames, leftover, err := DecodeFrames(test.buf, test.cfg, nil)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(frames, test.want) {
				t.Fatalf("frames: got %+v, want %+v", frames, test.want)
			}
			if !reflect.DeepEqual(leftover, test.leftover) {
				t.Fatalf("leftover: got %#v, want %#v", leftover, test.leftover)
			}
		})
	}
}

func TestDecodeFrames_NoStreamsHeaderless(t *testing.T) {
	_, _, err := DecodeFrames([]byte{1, 2, 3}, FIFOConfig{}, nil)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestDecodeFrames_RoundTrip(t *testing.T) {
	cfg := FIFOConfig{Accel: true, Gyro: true, Mag: true, Header: true}
	for _, want := range []Frame{
		{Kind: FrameAccel, X: -300, Y: 42, Z: 32767},
		{Kind: FrameGyro, X: 1, Y: -1, Z: -32768},
		{Kind: FrameMag, X: 100, Y: -200, Z: 300, RHall: 0xBEEF},
		{Kind: FrameSensorTime, Time: 0xFFFFFF},
		{Kind: FrameSkip, Skipped: 0xFF},
		{Kind: FrameConfigChange},
	} {
		frames, leftover, err := DecodeFrames(encodeFrame(t, want), cfg, nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(frames) != 1 || frames[0] != want {
			t.Fatalf("got %+v, want [%+v]", frames, want)
		}
		if leftover != nil {
			t.Fatalf("unexpected leftover %#v", leftover)
		}
	}
}

// Splitting a valid stream at any byte boundary and feeding the leftover of
// the first half into the second must reproduce the unsplit decoding.
func TestDecodeFrames_SplitEquivalence(t *testing.T) {
	cfg := FIFOConfig{Accel: true, Gyro: true, Mag: true, Header: true}
	var buf []byte
	for _, f := range []Frame{
		{Kind: FrameSkip, Skipped: 2},
		{Kind: FrameMag, X: -5, Y: 6, Z: -7, RHall: 88},
		{Kind: FrameAccel, X: 1000, Y: -1000, Z: 500},
		{Kind: FrameConfigChange},
		{Kind: FrameGyro, X: -1, Y: 2, Z: -3},
	} {
		buf = append(buf, encodeFrame(t, f)...)
	}
	whole, leftover, err := DecodeFrames(buf, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if leftover != nil {
		t.Fatalf("unsplit decode left %#v over", leftover)
	}

	for cut := 0; cut <= len(buf); cut++ {
		first, carry, err := DecodeFrames(buf[:cut], cfg, nil)
		if err != nil {
			t.Fatalf("cut %d: %v", cut, err)
		}
		if len(carry) >= 1+fifoMagLen+fifoGyroLen+fifoAccelLen {
			t.Fatalf("cut %d: leftover %d bytes exceeds longest frame", cut, len(carry))
		}
		second, rest, err := DecodeFrames(buf[cut:], cfg, carry)
		if err != nil {
			t.Fatalf("cut %d: %v", cut, err)
		}
		if rest != nil {
			t.Fatalf("cut %d: final leftover %#v", cut, rest)
		}
		got := append(append([]Frame{}, first...), second...)
		if !reflect.DeepEqual(got, whole) {
			t.Fatalf("cut %d: got %+v, want %+v", cut, got, whole)
		}
	}
}

func TestDecodeFrames_HeaderlessSplitEquivalence(t *testing.T) {
	cfg := FIFOConfig{Accel: true, Gyro: true}
	buf := []byte{
		1, 0, 2, 0, 3, 0, 4, 0, 5, 0, 6, 0,
		7, 0, 8, 0, 9, 0, 10, 0, 11, 0, 12, 0,
	}
	whole, _, err := DecodeFrames(buf, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	for cut := 0; cut <= len(buf); cut++ {
		first, carry, err := DecodeFrames(buf[:cut], cfg, nil)
		if err != nil {
			t.Fatalf("cut %d: %v", cut, err)
		}
		second, rest, err := DecodeFrames(buf[cut:], cfg, carry)
		if err != nil {
			t.Fatalf("cut %d: %v", cut, err)
		}
		if rest != nil {
			t.Fatalf("cut %d: final leftover %#v", cut, rest)
		}
		got := append(append([]Frame{}, first...), second...)
		if !reflect.DeepEqual(got, whole) {
			t.Fatalf("cut %d: got %+v, want %+v", cut, got, whole)
		}
	}
}

func TestReadFIFOLength(t *testing.T) {
	b := i2ctest.Playback{
		Ops: []i2ctest.IO{
			// High 5 bits of the MSB read undefined and must be masked.
			{Addr: I2CAddr, W: []byte{0x22}, R: []byte{0xFF, 0xFF}},
		},
	}
	d := Dev{t: transport{c: &i2c.Dev{Bus: &b, Addr: I2CAddr}}}
	n, err := d.ReadFIFOLength()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0x7FF {
		t.Fatalf("got %d, want %d", n, 0x7FF)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestReadFrames(t *testing.T) {
	// 12 content bytes: one accel frame, a sensortime frame and the empty
	// marker. Time is enabled, so the burst extends 25 bytes past the
	// reported length.
	content := []byte{
		0x84, 0x10, 0x00, 0x20, 0x00, 0x30, 0x00,
		0x44, 0x01, 0x02, 0x03,
		0x80,
	}
	burst := append(append([]byte{}, content...), make([]byte, fifoOverRead)...)
	b := i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: I2CAddr, W: []byte{0x22}, R: []byte{byte(len(content)), 0x00}},
			{Addr: I2CAddr, W: []byte{0x24}, R: burst},
		},
	}
	d := Dev{
		t:    transport{c: &i2c.Dev{Bus: &b, Addr: I2CAddr}},
		fifo: FIFOConfig{Accel: true, Header: true, Time: true},
	}
	frames, err := d.ReadFrames()
	if err != nil {
		t.Fatal(err)
	}
	want := []Frame{
		{Kind: FrameAccel, X: 16, Y: 32, Z: 48},
		{Kind: FrameSensorTime, Time: 0x030201},
	}
	if !reflect.DeepEqual(frames, want) {
		t.Fatalf("got %+v, want %+v", frames, want)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestReadFrames_CarryAcrossReads(t *testing.T) {
	b := i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: I2CAddr, W: []byte{0x22}, R: []byte{0x04, 0x00}},
			{Addr: I2CAddr, W: []byte{0x24}, R: []byte{0x84, 0x10, 0x00, 0x20}},
			{Addr: I2CAddr, W: []byte{0x22}, R: []byte{0x03, 0x00}},
			{Addr: I2CAddr, W: []byte{0x24}, R: []byte{0x00, 0x30, 0x00}},
		},
	}
	d := Dev{
		t:    transport{c: &i2c.Dev{Bus: &b, Addr: I2CAddr}},
		fifo: FIFOConfig{Accel: true, Header: true},
	}
	frames, err := d.ReadFrames()
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 0 {
		t.Fatalf("expected no complete frame yet, got %+v", frames)
	}
	frames, err = d.ReadFrames()
	if err != nil {
		t.Fatal(err)
	}
	want := []Frame{{Kind: FrameAccel, X: 16, Y: 32, Z: 48}}
	if !reflect.DeepEqual(frames, want) {
		t.Fatalf("got %+v, want %+v", frames, want)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestReadFrames_EmptyFIFO(t *testing.T) {
	b := i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: I2CAddr, W: []byte{0x22}, R: []byte{0x00, 0x00}},
		},
	}
	d := Dev{
		t:    transport{c: &i2c.Dev{Bus: &b, Addr: I2CAddr}},
		fifo: FIFOConfig{Accel: true, Header: true},
	}
	frames, err := d.ReadFrames()
	if err != nil {
		t.Fatal(err)
	}
	if frames != nil {
		t.Fatalf("expected no frames, got %+v", frames)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestFlushFIFO(t *testing.T) {
	b := i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: I2CAddr, W: []byte{0x7E, 0xB0}},
		},
	}
	d := Dev{
		t:     transport{c: &i2c.Dev{Bus: &b, Addr: I2CAddr}},
		carry: []byte{0x84, 0x01},
	}
	if err := d.FlushFIFO(); err != nil {
		t.Fatal(err)
	}
	if d.carry != nil {
		t.Fatalf("carry not dropped: %#v", d.carry)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
}
