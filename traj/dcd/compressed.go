/*
 * compressed.go, part of trajimg.
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

package dcd

import (
	"bufio"
	"compress/lzw"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const (
	lzwOrder        = lzw.MSB
	lzwLitwidth int = 8
)

// source closes the decompressor, if any, and then the file.
type source struct {
	io.Reader
	closers []func() error
}

func (s *source) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openSource opens fname and returns a reader that decompresses it,
// if needed, depending on the extension: .gz (gzip), .zst (zstd),
// .lzw (lzw). Anything else is read as a plain DCD file.
func openSource(fname string) (io.ReadCloser, error) {
	fhandle, err := os.Open(fname)
	if err != nil {
		return nil, Error{err.Error(), fname, []string{"os.Open", "openSource"}, true}
	}
	reader := bufio.NewReader(fhandle)
	s := &source{closers: []func() error{fhandle.Close}}
	switch strings.ToLower(filepath.Ext(fname)) {
	case ".gz":
		gz, err := gzip.NewReader(reader)
		if err != nil {
			fhandle.Close()
			return nil, Error{err.Error(), fname, []string{"gzip.NewReader", "openSource"}, true}
		}
		s.Reader = gz
		s.closers = append([]func() error{gz.Close}, s.closers...)
	case ".zst":
		zr, err := zstd.NewReader(reader)
		if err != nil {
			fhandle.Close()
			return nil, Error{err.Error(), fname, []string{"zstd.NewReader", "openSource"}, true}
		}
		s.Reader = zr
		s.closers = append([]func() error{func() error { zr.Close(); return nil }}, s.closers...)
	case ".lzw":
		lr := lzw.NewReader(reader, lzwOrder, lzwLitwidth)
		s.Reader = lr
		s.closers = append([]func() error{lr.Close}, s.closers...)
	default:
		s.Reader = reader
	}
	return s, nil
}
