/*
 * frames.go, part of trajimg.
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

// Package movie lists rendered frames and assembles them into videos,
// through the ffmpeg executable, or into animated GIFs.
package movie

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FrameName returns the file name for the image of trajectory frame i.
func FrameName(i int) string {
	return fmt.Sprintf("frame_%06d.png", i)
}

// FramePaths returns the paths of the images for the given frame indices
// in dir, in the same order as indices.
func FramePaths(dir string, indices []int) []string {
	ret := make([]string, len(indices))
	for k, i := range indices {
		ret[k] = filepath.Join(dir, FrameName(i))
	}
	return ret
}

// CollectFrames returns the paths of the files in dir with the extension
// ext (e.g. ".png"), in natural order.
func CollectFrames(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		names = append(names, e.Name())
	}
	SortAlphanumeric(names)
	for i, n := range names {
		names[i] = filepath.Join(dir, n)
	}
	return names, nil
}

// SortAlphanumeric sorts names in natural order: runs of digits are
// compared by their numeric value and the rest case-insensitively, so
// "frame_2" goes before "frame_10".
func SortAlphanumeric(names []string) {
	sort.SliceStable(names, func(i, j int) bool { return naturalLess(names[i], names[j]) })
}

func naturalLess(a, b string) bool {
	ca, cb := chunks(a), chunks(b)
	for k := 0; k < len(ca) && k < len(cb); k++ {
		x, y := ca[k], cb[k]
		xd, yd := isDigits(x), isDigits(y)
		switch {
		case xd && yd:
			xt, yt := strings.TrimLeft(x, "0"), strings.TrimLeft(y, "0")
			if len(xt) != len(yt) {
				return len(xt) < len(yt)
			}
			if xt != yt {
				return xt < yt
			}
		case xd != yd:
			//numbers go first
			return xd
		default:
			xl, yl := strings.ToLower(x), strings.ToLower(y)
			if xl != yl {
				return xl < yl
			}
		}
	}
	if len(ca) != len(cb) {
		return len(ca) < len(cb)
	}
	return a < b
}

// chunks splits s in runs of ASCII digits and the rest. Working on bytes
// keeps multi-byte characters whole, since none of their bytes is a digit.
func chunks(s string) []string {
	var ret []string
	start := 0
	for i := 1; i < len(s); i++ {
		if isDigit(s[i]) != isDigit(s[i-1]) {
			ret = append(ret, s[start:i])
			start = i
		}
	}
	if start < len(s) {
		ret = append(ret, s[start:])
	}
	return ret
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isDigits(s string) bool {
	return s != "" && isDigit(s[0])
}
