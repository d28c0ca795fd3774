// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package fifoscope renders a decoded BMI160 FIFO frame sequence as an X/Y/Z
// trace image, one polyline per axis.
//
// It is meant for quick offline inspection of FIFO drains: dump the frames
// returned by bmi160.Dev.ReadFrames into a PNG and look at it.
package fifoscope

import (
	"errors"
	"image"
	"image/png"
	"io"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/bionicbits/bmi160"
)

// ErrNoFrames is returned when the frame sequence contains no sample frames
// of the requested kind.
var ErrNoFrames = errors.New("fifoscope: no sample frames to render")

// Opts represents the rendering options.
type Opts struct {
	// Width and Height of the rendered image in pixels.
	Width  int
	Height int
	// FullScale is the absolute sample value mapped to the vertical edge.
	FullScale int16
	// Title is drawn in the top left corner.
	Title string
	// TTF is the font used for labels. goregular is used when nil.
	TTF []byte

	_ struct{}
}

// DefaultOpts renders an 800x240 trace with 16 bit full scale.
var DefaultOpts = Opts{
	Width:     800,
	Height:    240,
	FullScale: 0x7FFF,
}

// Render draws the samples of the given kind found in frames. Marker frames
// (skip, sensortime, config change) are ignored.
func Render(frames []bmi160.Frame, kind bmi160.FrameKind, opts *Opts) (image.Image, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	w, h := opts.Width, opts.Height
	if w <= 0 {
		w = DefaultOpts.Width
	}
	if h <= 0 {
		h = DefaultOpts.Height
	}
	fs := opts.FullScale
	if fs <= 0 {
		fs = DefaultOpts.FullScale
	}

	var xs, ys, zs []int16
	for _, f := range frames {
		if f.Kind != kind {
			continue
		}
		xs = append(xs, f.X)
		ys = append(ys, f.Y)
		zs = append(zs, f.Z)
	}
	if len(xs) == 0 {
		return nil, ErrNoFrames
	}

	ttf := opts.TTF
	if ttf == nil {
		ttf = goregular.TTF
	}
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	// Zero line.
	mid := float64(h) / 2
	dc.SetRGB(0.8, 0.8, 0.8)
	dc.SetLineWidth(1)
	dc.DrawLine(0, mid, float64(w), mid)
	dc.Stroke()

	scale := mid / float64(fs)
	step := float64(w)
	if len(xs) > 1 {
		step = float64(w) / float64(len(xs)-1)
	}
	trace := func(vals []int16, r, g, b float64) {
		dc.SetRGB(r, g, b)
		dc.SetLineWidth(1.5)
		for i, v := range vals {
			y := mid - float64(v)*scale
			if i == 0 {
				dc.MoveTo(0, y)
			} else {
				dc.LineTo(float64(i)*step, y)
			}
		}
		dc.Stroke()
	}
	trace(xs, 1, 0, 0)
	trace(ys, 0, 0.6, 0)
	trace(zs, 0, 0, 1)

	face := truetype.NewFace(f, &truetype.Options{Size: 12})
	dc.SetFontFace(face)
	dc.SetRGB(0.2, 0.2, 0.2)
	title := opts.Title
	if title == "" {
		title = kind.String()
	}
	dc.DrawString(title, 4, 14)

	return dc.Image(), nil
}

// RenderTo renders like Render and encodes the result as PNG into w.
func RenderTo(w io.Writer, frames []bmi160.Frame, kind bmi160.FrameKind, opts *Opts) error {
	img, err := Render(frames, kind, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}
