// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package termview renders live BMI160 samples as colored bars on a
// terminal (stdout) using ANSI color codes.
//
// Useful to eyeball sensor behaviour while wiring up a board, without a
// graphical environment.
package termview

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"

	"github.com/bionicbits/bmi160"
)

// Opts represents the options available for the meter.
type Opts struct {
	// Width is the number of character cells one full-scale axis bar spans.
	Width int
	// FullScale is the absolute sample value mapped to a full bar.
	FullScale int16
	Palette   *ansi256.Palette

	_ struct{}
}

// DefaultOpts renders 20 cells per axis with 16 bit full scale.
var DefaultOpts = Opts{
	Width:     20,
	FullScale: 0x7FFF,
}

// Meter prints one line per frame: three horizontal bars for the X, Y and Z
// axes, colored red, green and blue.
type Meter struct {
	w         io.Writer
	width     int
	fullScale int32
	palette   ansi256.Palette

	buf bytes.Buffer
}

// New returns a Meter that displays at the console.
func New(opts *Opts) *Meter {
	m := NewWriter(colorable.NewColorableStdout(), opts)
	return m
}

// NewWriter returns a Meter that writes to w. The writer must understand
// ANSI escape sequences.
func NewWriter(w io.Writer, opts *Opts) *Meter {
	if opts == nil {
		opts = &DefaultOpts
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	width := opts.Width
	if width <= 0 {
		width = DefaultOpts.Width
	}
	fs := opts.FullScale
	if fs <= 0 {
		fs = DefaultOpts.FullScale
	}
	return &Meter{w: w, width: width, fullScale: int32(fs), palette: *p}
}

// String implements conn.Resource.
func (m *Meter) String() string {
	return "TermView"
}

// Halt resets the terminal attributes so the shell is not left with a stray
// color state.
//
// Halt implements conn.Resource.
func (m *Meter) Halt() error {
	_, err := m.w.Write([]byte("\n\033[0m"))
	return err
}

// Draw renders one sample frame and returns to the start of the line so the
// next frame overwrites it. Non-sample frames render as a short note on
// their own line.
func (m *Meter) Draw(f bmi160.Frame) error {
	m.buf.Reset()
	switch f.Kind {
	case bmi160.FrameAccel, bmi160.FrameGyro, bmi160.FrameMag:
		_, _ = m.buf.WriteString("\r\033[0m")
		fmt.Fprintf(&m.buf, "%-5s", f.Kind)
		m.bar(f.X, color.NRGBA{R: 255, A: 255})
		m.bar(f.Y, color.NRGBA{G: 255, A: 255})
		m.bar(f.Z, color.NRGBA{B: 255, A: 255})
		_, _ = m.buf.WriteString("\033[0m ")
	case bmi160.FrameSensorTime:
		fmt.Fprintf(&m.buf, "\r\033[0mt=%d ticks\n", f.Time)
	case bmi160.FrameSkip:
		fmt.Fprintf(&m.buf, "\r\033[0mskipped %d frames\n", f.Skipped)
	case bmi160.FrameConfigChange:
		_, _ = m.buf.WriteString("\r\033[0mFIFO input config changed\n")
	}
	_, err := m.buf.WriteTo(m.w)
	return err
}

// bar writes one axis as filled blocks in c, padded to the meter width.
func (m *Meter) bar(v int16, c color.NRGBA) {
	n := int(abs32(int32(v)) * int32(m.width) / m.fullScale)
	if n > m.width {
		n = m.width
	}
	block := m.palette.Block(c)
	for i := 0; i < m.width; i++ {
		if i < n {
			_, _ = io.WriteString(&m.buf, block)
		} else {
			_, _ = m.buf.WriteString("\033[0m ")
		}
	}
	_, _ = m.buf.WriteString("\033[0m|")
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
