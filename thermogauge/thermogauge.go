// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package thermogauge draws a temperature bar on the terminal using ANSI
// color codes.
//
// The bar spans a fixed temperature scale. Filled cells are green below the
// hysteresis threshold, amber up to the overtemperature threshold and red
// above it. Unfilled threshold cells are marked in white so the trip points
// stay visible.
package thermogauge

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
)

var (
	colorCold   = color.NRGBA{0x00, 0xc0, 0x00, 0xff}
	colorWarm   = color.NRGBA{0xff, 0xa0, 0x00, 0xff}
	colorHot    = color.NRGBA{0xff, 0x00, 0x00, 0xff}
	colorEmpty  = color.NRGBA{0x30, 0x30, 0x30, 0xff}
	colorMarker = color.NRGBA{0xff, 0xff, 0xff, 0xff}
)

// Opts represents the options available for the gauge.
type Opts struct {
	// X is the bar width in character cells.
	X       int
	Palette *ansi256.Palette
	// Min and Max bound the scale. They default to the PCT2075 range.
	Min physic.Temperature
	Max physic.Temperature
	// Out defaults to stdout.
	Out io.Writer

	_ struct{}
}

// Dev is a one line temperature gauge on the console.
type Dev struct {
	w       io.Writer
	l       int
	palette ansi256.Palette
	lo      physic.Temperature
	hi      physic.Temperature

	pixels []byte
	label  string
	buf    bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(opts *Opts) (*Dev, error) {
	if opts.X <= 0 {
		return nil, errors.New("thermogauge: width must be positive")
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	lo, hi := opts.Min, opts.Max
	if lo == 0 && hi == 0 {
		lo = physic.ZeroCelsius - 55*physic.Kelvin
		hi = physic.ZeroCelsius + 125*physic.Kelvin
	}
	if lo >= hi {
		return nil, errors.New("thermogauge: invalid scale")
	}
	w := opts.Out
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &Dev{
		w:       w,
		l:       opts.X,
		palette: *p,
		lo:      lo,
		hi:      hi,
		pixels:  make([]byte, 3*opts.X),
	}, nil
}

func (d *Dev) String() string {
	return "ThermoGauge"
}

// Halt implements conn.Resource.
//
// It ends the line and resets the colors so the terminal is not corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// Show draws t against the hyst and tos thresholds, followed by the
// temperature in text.
func (d *Dev) Show(t, hyst, tos physic.Temperature) error {
	d.label = t.String()
	img := Render(d.l, d.lo, d.hi, t, hyst, tos)
	return d.Draw(d.Bounds(), img, image.Point{})
}

// Write accepts a stream of raw RGB pixels and writes it to the console.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels)%3 != 0 {
		return 0, errors.New("thermogauge: invalid RGB stream length")
	}
	copy(d.pixels, pixels)
	return d.refresh()
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rectangle{Max: image.Point{X: d.l, Y: 1}}
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.Bounds())
	srcR := src.Bounds()
	srcR.Min = srcR.Min.Add(sp)
	if dX := r.Dx(); dX < srcR.Dx() {
		srcR.Max.X = srcR.Min.X + dX
	}
	deltaX3 := 3 * (r.Min.X - srcR.Min.X)
	for sX := srcR.Min.X; sX < srcR.Max.X; sX++ {
		r16, g16, b16, _ := src.At(sX, srcR.Min.Y).RGBA()
		dX3 := 3*sX + deltaX3
		d.pixels[dX3] = byte(r16 >> 8)
		d.pixels[dX3+1] = byte(g16 >> 8)
		d.pixels[dX3+2] = byte(b16 >> 8)
	}
	_, err := d.refresh()
	return err
}

func (d *Dev) refresh() (int, error) {
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r\033[0m")
	for i := 0; i < len(d.pixels)/3; i++ {
		c := color.NRGBA{d.pixels[3*i], d.pixels[3*i+1], d.pixels[3*i+2], 255}
		_, _ = io.WriteString(&d.buf, d.palette.Block(c))
	}
	_, _ = d.buf.WriteString("\033[0m ")
	if d.label != "" {
		_, _ = fmt.Fprintf(&d.buf, "%-10s", d.label)
	}
	_, err := d.buf.WriteTo(d.w)
	return len(d.pixels), err
}

// Render returns a width x 1 image of the gauge for t on the scale
// [lo, hi).
func Render(width int, lo, hi, t, hyst, tos physic.Temperature) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, 1))
	span := hi - lo
	cell := func(v physic.Temperature) int {
		i := int((v - lo) * physic.Temperature(width) / span)
		if i < 0 {
			return 0
		}
		if i >= width {
			return width - 1
		}
		return i
	}
	filled := 0
	if t >= lo {
		filled = int((t - lo) * physic.Temperature(width) / span)
		if filled > width {
			filled = width
		}
	}
	hystCell, tosCell := cell(hyst), cell(tos)
	for i := 0; i < width; i++ {
		c := colorEmpty
		if i < filled {
			lower := lo + span*physic.Temperature(i)/physic.Temperature(width)
			switch {
			case lower >= tos:
				c = colorHot
			case lower >= hyst:
				c = colorWarm
			default:
				c = colorCold
			}
		} else if i == hystCell || i == tosCell {
			c = colorMarker
		}
		img.SetNRGBA(i, 0, c)
	}
	return img
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
