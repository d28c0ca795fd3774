// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bmi160

import (
	"encoding/binary"
	"fmt"
)

const (
	// fifoCapacity is the size of the hardware FIFO in bytes.
	fifoCapacity = 1024
	// fifoOverRead is the number of extra bytes read past the reported FIFO
	// length so that a sensortime frame appended on flush is captured whole.
	fifoOverRead = 25
	// fifoDownsampleMax is the largest downsampling shift (every 2^7th
	// sample) the FIFO_DOWNS register encodes.
	fifoDownsampleMax = 7
	// fifoWatermarkMax is the highest watermark FIFO_CONFIG_0 can hold:
	// 255 units of 4 bytes.
	fifoWatermarkMax = 0xFF * 4
)

// Frame payload lengths in bytes. A headered data frame carries the payloads
// of its flagged streams back to back in mag, gyro, accel order.
const (
	fifoMagLen        = 8
	fifoGyroLen       = 6
	fifoAccelLen      = 6
	fifoSensorTimeLen = 3
)

// FIFO frame header tags, after the interrupt tag bits are masked off.
const (
	fifoHeadSkip        = 0x40
	fifoHeadSensorTime  = 0x44
	fifoHeadInputConfig = 0x48
	fifoHeadOverRead    = 0x80

	// Data frame headers are 0x80 plus one bit per contained stream:
	// 0x84 accel, 0x88 gyro, 0x8C gyro+accel, 0x90 mag, 0x94 mag+accel,
	// 0x98 mag+gyro, 0x9C mag+gyro+accel.
	fifoHeadAccelBit  = 0x04
	fifoHeadGyroBit   = 0x08
	fifoHeadMagBit    = 0x10
	fifoHeadStreamBit = fifoHeadMagBit | fifoHeadGyroBit | fifoHeadAccelBit

	// Interrupt tag bits in data frame headers, set when the frame was
	// tagged by the INT1/INT2 pins. They do not change the frame layout.
	fifoTagIntMask = 0xFC
)

// FIFOConfig describes what the FIFO stores and in which format. It must
// match the configuration programmed via SetFIFOConfig for decoding to make
// sense; a mismatch desynchronizes the frame stream.
type FIFOConfig struct {
	// Accel, Gyro and Mag select which sensor streams enter the FIFO.
	Accel bool
	Gyro  bool
	Mag   bool
	// Header selects headered mode, in which every frame starts with a tag
	// byte. In headerless mode the layout is fixed by the stream selection
	// alone and no skip, sensortime or config-change markers exist.
	Header bool
	// Time appends a sensortime frame when the FIFO is flushed or read past
	// its fill level. Only meaningful in headered mode.
	Time bool
	// AccelDownsample and GyroDownsample store every 2^n-th hardware sample
	// (0-7).
	AccelDownsample uint8
	GyroDownsample  uint8
	// AccelFiltered and GyroFiltered select filtered instead of unfiltered
	// data for the FIFO path.
	AccelFiltered bool
	GyroFiltered  bool
}

// frameLen returns the payload length of one headerless frame, or of the
// data portion of a headered frame with the same stream selection.
func (c FIFOConfig) frameLen() int {
	n := 0
	if c.Mag {
		n += fifoMagLen
	}
	if c.Gyro {
		n += fifoGyroLen
	}
	if c.Accel {
		n += fifoAccelLen
	}
	return n
}

// FrameKind identifies the type of a decoded FIFO frame.
type FrameKind uint8

const (
	// FrameAccel is one accelerometer sample.
	FrameAccel FrameKind = iota
	// FrameGyro is one gyroscope sample.
	FrameGyro
	// FrameMag is one magnetometer sample including the hall resistance.
	FrameMag
	// FrameSensorTime carries the 24 bit sensor time counter captured when
	// the FIFO was flushed or read empty.
	FrameSensorTime
	// FrameSkip reports how many frames were dropped between the previous
	// and the next frame because the FIFO overflowed.
	FrameSkip
	// FrameConfigChange marks a change of the FIFO input configuration.
	// Samples before and after it were captured under different settings.
	FrameConfigChange
)

// String implements fmt.Stringer.
func (k FrameKind) String() string {
	switch k {
	case FrameAccel:
		return "accel"
	case FrameGyro:
		return "gyro"
	case FrameMag:
		return "mag"
	case FrameSensorTime:
		return "sensortime"
	case FrameSkip:
		return "skip"
	case FrameConfigChange:
		return "config-change"
	}
	return fmt.Sprintf("FrameKind(%d)", uint8(k))
}

// Frame is one decoded FIFO frame. Only the fields matching Kind are valid.
type Frame struct {
	Kind FrameKind
	// X, Y, Z are the sample axes for accel, gyro and mag frames, in raw
	// sensor counts.
	X, Y, Z int16
	// RHall is the magnetometer hall resistance readout.
	RHall uint16
	// Time is the 24 bit sensor time tick count of a sensortime frame.
	Time uint32
	// Skipped is the dropped frame count of a skip frame.
	Skipped uint8
}

// DecodeFrames decodes the byte stream drained from the FIFO data register
// into typed frames, in stream order. It is pure: it performs no I/O and
// holds no state across calls.
//
// carry is the leftover returned by the previous call, prepended to buf
// before decoding; a frame may legitimately straddle two register reads.
// leftover holds the trailing bytes of buf that did not form a complete
// frame. It is always shorter than the longest frame the configuration
// allows and does not alias buf.
//
// On a malformed header the frames decoded so far are returned together
// with a *MalformedHeaderError naming the offending offset; decoding cannot
// continue past an unknown tag since the frame length depends on it.
func DecodeFrames(buf []byte, cfg FIFOConfig, carry []byte) (frames []Frame, leftover []byte, err error) {
	if len(carry) > 0 {
		merged := make([]byte, 0, len(carry)+len(buf))
		merged = append(merged, carry...)
		buf = append(merged, buf...)
	}
	if cfg.Header {
		return decodeHeadered(buf)
	}
	return decodeHeaderless(buf, cfg)
}

func decodeHeadered(buf []byte) ([]Frame, []byte, error) {
	var frames []Frame
	i := 0
	for i < len(buf) {
		h := buf[i] & fifoTagIntMask
		switch {
		case h == fifoHeadOverRead:
			// FIFO empty marker: the remaining bytes are padding from
			// reading past the fill level.
			return frames, nil, nil
		case h == fifoHeadSkip:
			if len(buf)-i < 2 {
				return frames, tail(buf, i), nil
			}
			frames = append(frames, Frame{Kind: FrameSkip, Skipped: buf[i+1]})
			i += 2
		case h == fifoHeadSensorTime:
			if len(buf)-i < 1+fifoSensorTimeLen {
				return frames, tail(buf, i), nil
			}
			t := uint32(buf[i+1]) | uint32(buf[i+2])<<8 | uint32(buf[i+3])<<16
			frames = append(frames, Frame{Kind: FrameSensorTime, Time: t})
			// The sensortime frame is written when the FIFO drains and is
			// always last; anything after it is padding.
			return frames, nil, nil
		case h == fifoHeadInputConfig:
			frames = append(frames, Frame{Kind: FrameConfigChange})
			i++
		case h&0x80 != 0 && h&^(0x80|fifoHeadStreamBit) == 0:
			n := 0
			if h&fifoHeadMagBit != 0 {
				n += fifoMagLen
			}
			if h&fifoHeadGyroBit != 0 {
				n += fifoGyroLen
			}
			if h&fifoHeadAccelBit != 0 {
				n += fifoAccelLen
			}
			if len(buf)-i < 1+n {
				return frames, tail(buf, i), nil
			}
			p := i + 1
			if h&fifoHeadMagBit != 0 {
				frames = append(frames, decodeMag(buf[p:p+fifoMagLen]))
				p += fifoMagLen
			}
			if h&fifoHeadGyroBit != 0 {
				frames = append(frames, decodeAxes(FrameGyro, buf[p:p+fifoGyroLen]))
				p += fifoGyroLen
			}
			if h&fifoHeadAccelBit != 0 {
				frames = append(frames, decodeAxes(FrameAccel, buf[p:p+fifoAccelLen]))
				p += fifoAccelLen
			}
			i = p
		default:
			return frames, nil, &MalformedHeaderError{Offset: i, Header: buf[i]}
		}
	}
	return frames, nil, nil
}

func decodeHeaderless(buf []byte, cfg FIFOConfig) ([]Frame, []byte, error) {
	n := cfg.frameLen()
	if n == 0 {
		return nil, nil, fmt.Errorf("%w: no FIFO streams enabled", ErrInvalidConfig)
	}
	var frames []Frame
	i := 0
	for len(buf)-i >= n {
		if cfg.Mag {
			frames = append(frames, decodeMag(buf[i:i+fifoMagLen]))
			i += fifoMagLen
		}
		if cfg.Gyro {
			frames = append(frames, decodeAxes(FrameGyro, buf[i:i+fifoGyroLen]))
			i += fifoGyroLen
		}
		if cfg.Accel {
			frames = append(frames, decodeAxes(FrameAccel, buf[i:i+fifoAccelLen]))
			i += fifoAccelLen
		}
	}
	return frames, tail(buf, i), nil
}

// tail copies buf[i:] so the leftover does not alias the caller's buffer.
func tail(buf []byte, i int) []byte {
	if i >= len(buf) {
		return nil
	}
	t := make([]byte, len(buf)-i)
	copy(t, buf[i:])
	return t
}

// decodeAxes reconstructs one X/Y/Z sample from little-endian LSB/MSB pairs,
// interpreted as signed two's complement.
func decodeAxes(kind FrameKind, b []byte) Frame {
	return Frame{
		Kind: kind,
		X:    int16(binary.LittleEndian.Uint16(b[0:2])),
		Y:    int16(binary.LittleEndian.Uint16(b[2:4])),
		Z:    int16(binary.LittleEndian.Uint16(b[4:6])),
	}
}

// decodeMag reconstructs one magnetometer sample; RHall is unsigned.
func decodeMag(b []byte) Frame {
	f := decodeAxes(FrameMag, b[0:6])
	f.RHall = binary.LittleEndian.Uint16(b[6:8])
	return f
}

// ReadFIFOLength returns the current FIFO fill level in bytes. The counter
// is 11 bits wide; the unused high bits of the second byte read undefined
// and are masked off.
func (d *Dev) ReadFIFOLength() (int, error) {
	var buf [2]byte
	if err := d.t.readBurst(RegFIFOLength, buf[:]); err != nil {
		return 0, err
	}
	return int(uint16(buf[0]) | uint16(buf[1]&0x07)<<8), nil
}

// ReadFrames drains the FIFO and decodes its content using the configuration
// set by SetFIFOConfig. A trailing partial frame is carried over and
// completed by the next call.
//
// When sensortime frames are enabled the burst read extends 25 bytes past
// the reported fill level so the sensortime frame appended on drain is
// captured whole; the FIFO-empty marker terminates decoding inside the
// over-read region.
func (d *Dev) ReadFrames() ([]Frame, error) {
	n, err := d.ReadFIFOLength()
	if err != nil {
		return nil, err
	}
	if n == 0 && len(d.carry) == 0 {
		return nil, nil
	}
	if n > fifoCapacity {
		n = fifoCapacity
	}
	if d.fifo.Header && d.fifo.Time {
		n += fifoOverRead
	}
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if err := d.t.readBurst(RegFIFOData, buf); err != nil {
		return nil, err
	}
	frames, leftover, err := DecodeFrames(buf, d.fifo, d.carry)
	d.carry = leftover
	return frames, err
}

// FlushFIFO clears the FIFO content and drops any carried-over partial
// frame. The FIFO configuration is unaffected.
func (d *Dev) FlushFIFO() error {
	if err := d.t.writeReg(RegCmd, cmdFIFOFlush); err != nil {
		return err
	}
	d.carry = nil
	return nil
}
