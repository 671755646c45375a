/*
 * colors.go, part of trajimg.
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

package render

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/rmera/trajimg/chem"
)

// Jmol CPK colors for the elements found in biomolecular simulations.
var cpk = map[string]color.NRGBA{
	"H":  {255, 255, 255, 255},
	"C":  {144, 144, 144, 255},
	"N":  {48, 80, 248, 255},
	"O":  {255, 13, 13, 255},
	"F":  {144, 224, 80, 255},
	"Na": {171, 92, 242, 255},
	"Mg": {138, 255, 0, 255},
	"P":  {255, 128, 0, 255},
	"S":  {255, 255, 48, 255},
	"Cl": {31, 240, 31, 255},
	"K":  {143, 64, 212, 255},
	"Ca": {61, 255, 0, 255},
	"Mn": {156, 122, 199, 255},
	"Fe": {224, 102, 51, 255},
	"Co": {240, 144, 160, 255},
	"Ni": {80, 208, 80, 255},
	"Cu": {200, 128, 51, 255},
	"Zn": {125, 128, 176, 255},
	"Se": {255, 161, 0, 255},
	"Br": {166, 41, 41, 255},
	"I":  {148, 0, 148, 255},
}

var unknownElement = color.NRGBA{255, 20, 147, 255}

var namedColors = map[string]color.NRGBA{
	"white":   {255, 255, 255, 255},
	"black":   {0, 0, 0, 255},
	"grey":    {128, 128, 128, 255},
	"gray":    {128, 128, 128, 255},
	"red":     {255, 0, 0, 255},
	"green":   {0, 200, 0, 255},
	"blue":    {0, 0, 255, 255},
	"yellow":  {255, 255, 0, 255},
	"orange":  {255, 165, 0, 255},
	"cyan":    {0, 255, 255, 255},
	"magenta": {255, 0, 255, 255},
	"purple":  {128, 0, 128, 255},
	"pink":    {255, 192, 203, 255},
	"brown":   {165, 42, 42, 255},
}

// ParseColor returns the color for a name (red, blue...) or a hex
// code in the #rgb or #rrggbb forms.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		return color.NRGBA{}, fmt.Errorf("render: unknown color %q", s)
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("render: bad hex color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("render: bad hex color %q: %w", s, err)
	}
	return color.NRGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}, nil
}

// hsv2RGB takes hue (0-360), v and s (0-1), returns r,g,b (0-255)
func hsv2RGB(h, v, s float64) (uint8, uint8, uint8) {
	maxcolor := 255.0
	if s == 0.0 {
		return uint8(maxcolor * v), uint8(maxcolor * v), uint8(maxcolor * v)
	}
	h = math.Mod(h, 360) / 60
	i := math.Floor(h)
	f := h - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))
	var r, g, b float64
	switch int(i) {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default: //case 5
		r, g, b = v, p, q
	}
	return uint8(r * maxcolor), uint8(g * maxcolor), uint8(b * maxcolor)
}

// rainbow returns the color for the keyth of steps items, going
// from red to violet and skipping the yellows, which are hard to see
// on white backgrounds.
func rainbow(key, steps int) color.NRGBA {
	if steps < 1 {
		steps = 1
	}
	norm := 260.0 / float64(steps)
	hp := float64(key)*norm + 20.0
	var h float64
	if hp < 55 {
		h = hp - 20.0
	} else {
		h = hp + 20.0
	}
	r, g, b := hsv2RGB(h, 1, 1)
	return color.NRGBA{r, g, b, 255}
}

// Color schemes accepted by Representation.Color, other than
// a single named or hex color.
const (
	ColorElement      = "element"
	ColorChainID      = "chainid"
	ColorResidueIndex = "residueindex"
	ColorUniform      = "uniform"
)

// colorScheme returns a function giving the color of each atom of top
// for the scheme named. An empty scheme means element colors.
func colorScheme(scheme string, top *chem.Topology) (func(i int) color.NRGBA, error) {
	switch strings.ToLower(scheme) {
	case "", ColorElement, "cpk":
		return func(i int) color.NRGBA {
			if c, ok := cpk[top.Atom(i).Symbol]; ok {
				return c
			}
			return unknownElement
		}, nil
	case ColorUniform:
		return func(int) color.NRGBA { return color.NRGBA{128, 160, 255, 255} }, nil
	case ColorChainID:
		chains := top.Chains()
		index := make(map[byte]int, len(chains))
		for i, c := range chains {
			index[c] = i
		}
		return func(i int) color.NRGBA {
			return rainbow(index[top.Atom(i).Chain], len(chains))
		}, nil
	case ColorResidueIndex:
		//residues are numbered in order of appearance.
		resindex := make([]int, top.Len())
		n := -1
		var prev *chem.Atom
		for i, at := range top.Atoms {
			if prev == nil || at.ResID != prev.ResID || at.Chain != prev.Chain || at.ResName != prev.ResName {
				n++
			}
			resindex[i] = n
			prev = at
		}
		return func(i int) color.NRGBA { return rainbow(resindex[i], n+1) }, nil
	}
	c, err := ParseColor(scheme)
	if err != nil {
		return nil, err
	}
	return func(int) color.NRGBA { return c }, nil
}

// shade scales the RGB components of c by f, and mixes the result with white
// by w, both between 0 and 1.
func shade(c color.NRGBA, f, w float64) color.NRGBA {
	mix := func(v uint8) uint8 {
		x := float64(v)*f*(1-w) + 255*w
		return uint8(math.Max(0, math.Min(255, math.Round(x))))
	}
	return color.NRGBA{mix(c.R), mix(c.G), mix(c.B), c.A}
}
