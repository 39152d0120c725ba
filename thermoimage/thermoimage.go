// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package thermoimage renders a temperature reading as an image suitable for
// small pixel displays such as the ssd1306 or e-paper panels.
//
// Panels at least 24 pixels high use the Go regular TrueType font; smaller
// panels use the 7x13 bitmap font.
package thermoimage

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sync"

	"github.com/GermanBionicSystems/thermal/pct2075"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
)

// Reading is what a panel shows.
type Reading struct {
	Temperature     physic.Temperature
	Hysteresis      physic.Temperature
	OverTemperature physic.Temperature
}

// Alert reports whether the temperature is at or above the overtemperature
// threshold.
func (r *Reading) Alert() bool {
	return r.Temperature >= r.OverTemperature
}

const smallHeight = 24

var (
	parseOnce sync.Once
	goRegular *truetype.Font
	parseErr  error
)

func regularFace(size float64) (font.Face, error) {
	parseOnce.Do(func() {
		goRegular, parseErr = truetype.Parse(goregular.TTF)
	})
	if parseErr != nil {
		return nil, fmt.Errorf("thermoimage: %w", parseErr)
	}
	return truetype.NewFace(goRegular, &truetype.Options{Size: size}), nil
}

// Render returns a w x h image of r, black on white.
func Render(w, h int, r Reading) (image.Image, error) {
	if w <= 0 || h <= 0 {
		return nil, errors.New("thermoimage: invalid size")
	}
	if h < smallHeight {
		return renderSmall(w, h, r), nil
	}

	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)

	face, err := regularFace(float64(h) / 3)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(face)
	text := r.Temperature.String()
	if r.Alert() {
		text += " !"
	}
	dc.DrawStringAnchored(text, float64(w)/2, float64(h)/3, 0.5, 0.5)

	// Bar across the device range with ticks at both thresholds.
	padding := 4.0
	barY := float64(h) * 2 / 3
	barH := float64(h) / 6
	barW := float64(w) - 2*padding
	dc.DrawRectangle(padding, barY, barW, barH)
	dc.Stroke()
	dc.DrawRectangle(padding, barY, barW*fraction(r.Temperature), barH)
	dc.Fill()
	for _, t := range []physic.Temperature{r.Hysteresis, r.OverTemperature} {
		x := padding + barW*fraction(t)
		dc.DrawLine(x, barY-padding, x, barY+barH+padding)
	}
	dc.Stroke()
	return dc.Image(), nil
}

// renderSmall draws the temperature with the bitmap font only.
func renderSmall(w, h int, r Reading) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	face := basicfont.Face7x13
	text := r.Temperature.String()
	if r.Alert() {
		text = "!" + text
	}
	d := font.Drawer{Dst: img, Src: image.Black, Face: face}
	x := (fixed.I(w) - d.MeasureString(text)) / 2
	if x < 0 {
		x = 0
	}
	m := face.Metrics()
	y := (fixed.I(h) + m.Ascent - m.Descent) / 2
	d.Dot = fixed.Point26_6{X: x, Y: y}
	d.DrawString(text)
	return img
}

// fraction returns where t falls on the sensor range, clamped to [0, 1].
func fraction(t physic.Temperature) float64 {
	lo, hi := pct2075.MinimumTemperature, pct2075.MaximumTemperature
	if t <= lo {
		return 0
	}
	if t >= hi {
		return 1
	}
	return float64(t-lo) / float64(hi-lo)
}

// Draw renders r to fill d.
func Draw(d display.Drawer, r Reading) error {
	b := d.Bounds()
	img, err := Render(b.Dx(), b.Dy(), r)
	if err != nil {
		return err
	}
	return d.Draw(b, img, image.Point{})
}

// SavePNG renders r and writes it to path.
func SavePNG(path string, w, h int, r Reading) error {
	img, err := Render(w, h, r)
	if err != nil {
		return err
	}
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("thermoimage: %w", err)
	}
	return nil
}
