/*
 * stf_test.go, part of trajimg.
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

package stf

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/rmera/trajimg/chem"
	v3 "github.com/rmera/trajimg/v3"
)

func testFrames(Te *testing.T, nframes, natoms int) []*v3.Matrix {
	ret := make([]*v3.Matrix, nframes)
	for f := range ret {
		data := make([]float64, 3*natoms)
		for i := range data {
			data[i] = float64(f)*1.111 - 0.337*float64(i)
		}
		m, err := v3.NewMatrix(data)
		if err != nil {
			Te.Fatal(err)
		}
		ret[f] = m
	}
	return ret
}

// roundTrip writes frames to name and reads them back, checking that they
// are equal within the precision prec.
func roundTrip(Te *testing.T, name string, header map[string]string, prec int) map[string]string {
	frames := testFrames(Te, 3, 4)
	box := []float64{10, 0, 0, 0, 11, 0, 0, 0, 12.5}
	w, err := NewWriter(name, 4, header)
	if err != nil {
		Te.Fatal(err)
	}
	for _, f := range frames {
		if err := w.WNext(f, box); err != nil {
			Te.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		Te.Fatal(err)
	}
	r, h, err := New(name)
	if err != nil {
		Te.Fatal(err)
	}
	defer r.Close()
	if r.Len() != 4 {
		Te.Fatalf("read %d atoms per frame, want 4", r.Len())
	}
	tol := 0.5 * math.Pow(10, -float64(prec))
	rbox := make([]float64, 9)
	m := v3.Zeros(4)
	for n := 0; ; n++ {
		err := r.Next(m, rbox)
		if chem.IsLastFrame(err) {
			if n != len(frames) {
				Te.Fatalf("read %d frames, want %d", n, len(frames))
			}
			break
		}
		if err != nil {
			Te.Fatal(err)
		}
		for i := 0; i < 4; i++ {
			for j := 0; j < 3; j++ {
				if d := math.Abs(m.At(i, j) - frames[n].At(i, j)); d > tol+1e-12 {
					Te.Fatalf("%s frame %d atom %d: %v vs %v", name, n, i, m.Vec(i), frames[n].Vec(i))
				}
			}
		}
		if rbox[8] != 12.5 {
			Te.Errorf("box read as %v", rbox)
		}
	}
	return h
}

func TestSTFCompressions(Te *testing.T) {
	dir := Te.TempDir()
	for _, name := range []string{"t.stf", "t.stfz", "t.stfl", "t.stfr"} {
		h := roundTrip(Te, filepath.Join(dir, name), nil, defaultPrec)
		if h["prec"] != "2" {
			Te.Errorf("%s: header %v has no default precision", name, h)
		}
	}
}

func TestSTFHeader(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "h.stf")
	h := roundTrip(Te, name, map[string]string{"prec": "3", "title": "a test"}, 3)
	if h["prec"] != "3" || h["title"] != "a test" {
		Te.Errorf("header read as %v", h)
	}
	if _, err := NewWriter(filepath.Join(Te.TempDir(), "bad.stf"), 4, map[string]string{"a=b": "c"}); err == nil {
		Te.Error("a key with '=' should be rejected")
	}
}

func TestSTFNotCompressed(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "plain.stf")
	if err := os.WriteFile(name, []byte("prec=2\n** 1\n1 2 3\n*\n"), 0o644); err != nil {
		Te.Fatal(err)
	}
	if _, _, err := New(name); err == nil {
		Te.Error("expected an error for a file that isn't zstd-compressed")
	}
}

func TestCoordsCodec(Te *testing.T) {
	line := coordsEncode(nil, [3]float64{1.234, -0.005, 100}, 2)
	if string(line) != "123 0 10000\n" && string(line) != "123 -0 10000\n" {
		Te.Errorf("encoded as %q", line)
	}
	var c [3]float64
	if err := coordsDecode("123 -1 10000\n", &c, 2); err != nil {
		Te.Fatal(err)
	}
	if c != [3]float64{1.23, -0.01, 100} {
		Te.Errorf("decoded as %v", c)
	}
	if err := coordsDecode("1 2", &c, 2); err == nil {
		Te.Error("expected an error for a short line")
	}
}
