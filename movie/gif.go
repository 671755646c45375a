/*
 * gif.go, part of trajimg.
 *
 * Copyright 2025 The trajimg authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package movie

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"math"
	"os"
)

// GIF writes animated GIFs. Transparent pixels are put over Background,
// white if nil, and colors are reduced to the Plan 9 palette with
// Floyd-Steinberg dithering.
type GIF struct {
	Background color.Color
	LoopCount  int //0 loops forever
}

// Encode writes frames to output as an animated GIF. Frames are shown
// for 100/fps hundredths of a second, at least one.
func (G *GIF) Encode(ctx context.Context, frames []string, output string, fps float64) error {
	if err := checkFrames(frames, fps); err != nil {
		return err
	}
	bg := G.Background
	if bg == nil {
		bg = color.White
	}
	delay := int(math.Max(1, math.Round(100/fps)))
	anim := &gif.GIF{LoopCount: G.LoopCount}
	for _, name := range frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := readPNG(name)
		if err != nil {
			return err
		}
		b := img.Bounds()
		flat := image.NewRGBA(b)
		draw.Draw(flat, b, image.NewUniform(bg), image.Point{}, draw.Src)
		draw.Draw(flat, b, img, b.Min, draw.Over)
		pal := image.NewPaletted(b, palette.Plan9)
		draw.FloydSteinberg.Draw(pal, b, flat, b.Min)
		anim.Image = append(anim.Image, pal)
		anim.Delay = append(anim.Delay, delay)
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("movie: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := gif.EncodeAll(w, anim); err != nil {
		f.Close()
		return fmt.Errorf("movie: encoding %s: %w", output, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("movie: %w", err)
	}
	return f.Close()
}

func readPNG(name string) (image.Image, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("movie: %w", err)
	}
	defer f.Close()
	img, err := png.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("movie: decoding %s: %w", name, err)
	}
	return img, nil
}
