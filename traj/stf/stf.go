/*
 * stf.go, part of trajimg.
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
	"bufio"
	"compress/flate"
	"compress/lzw"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/rmera/trajimg/chem"
	v3 "github.com/rmera/trajimg/v3"
	"github.com/rs/zerolog/log"
)

const (
	lzwLitwidth int = 8
	defaultPrec     = 2
	maxPrec         = 8
)

// StfW is a STF trajectory open for writing.
type StfW struct {
	f         *os.File
	h         io.WriteCloser
	buf       *bufio.Writer
	natoms    int
	filename  string
	writeable bool
	prec      int
	line      []byte
}

// NewWriter creates the STF file name for frames of natoms atoms. The header
// entries are written in alphabetical order. If header contains a valid
// "prec" key, it sets the precision, otherwise the default of 2 is used and
// written to the header. The optional compression level only applies to
// gzip and deflate files.
func NewWriter(name string, natoms int, header map[string]string, compressionLevel ...int) (*StfW, error) {
	level := flate.BestCompression
	if len(compressionLevel) > 0 {
		level = compressionLevel[0]
	}
	if natoms <= 0 {
		return nil, Error{"The number of atoms must be positive", name, []string{"NewWriter"}, true}
	}
	S := &StfW{natoms: natoms, filename: name, prec: defaultPrec}
	hdr := make(map[string]string, len(header)+1)
	for k, v := range header {
		hdr[k] = v
	}
	if p, ok := hdr["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err != nil || prec < 0 || prec > maxPrec {
			log.Warn().Str("file", name).Str("prec", p).Msg("Invalid precision for trajectory, will use the default")
		} else {
			S.prec = prec
		}
	}
	hdr["prec"] = strconv.Itoa(S.prec)
	var err error
	S.f, err = os.Create(name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"os.Create", "NewWriter"}, true}
	}
	var anyNewWriter func(io.Writer) (io.WriteCloser, error)
	switch strings.ToLower(name)[len(name)-1] {
	case 'l':
		anyNewWriter = func(a io.Writer) (io.WriteCloser, error) { return lzw.NewWriter(a, lzw.MSB, lzwLitwidth), nil }
	case 'z':
		anyNewWriter = func(a io.Writer) (io.WriteCloser, error) { return gzip.NewWriterLevel(a, level) }
	case 'r':
		anyNewWriter = func(a io.Writer) (io.WriteCloser, error) { return flate.NewWriter(a, level) }
	default:
		anyNewWriter = func(a io.Writer) (io.WriteCloser, error) {
			return zstd.NewWriter(a, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		}
	}
	S.h, err = anyNewWriter(S.f)
	if err != nil {
		S.f.Close()
		return nil, Error{"Can't start compression: " + err.Error(), name, []string{"NewWriter"}, true}
	}
	S.buf = bufio.NewWriter(S.h)
	keys := make([]string, 0, len(hdr))
	for k := range hdr {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.ContainsAny(k, "=\n") || strings.Contains(k, "**") || strings.Contains(hdr[k], "\n") {
			S.Close()
			return nil, Error{fmt.Sprintf("Invalid header entry %q", k), name, []string{"NewWriter"}, true}
		}
		fmt.Fprintf(S.buf, "%s=%s\n", k, hdr[k])
	}
	fmt.Fprintf(S.buf, "** %d\n", natoms)
	S.writeable = true
	return S, nil
}

// Len returns the number of atoms per frame.
func (S *StfW) Len() int {
	return S.natoms
}

// WNext writes a frame with the coordinates in coord and, if given, the first 9
// elements of box as the box vectors.
func (S *StfW) WNext(coord *v3.Matrix, box ...[]float64) error {
	if !S.writeable {
		return Error{TrajUnIniWrite, S.filename, []string{"WNext"}, true}
	}
	if coord == nil {
		return Error{NilCoordinates, S.filename, []string{"WNext"}, true}
	}
	if v := coord.NVecs(); v != S.natoms {
		return Error{fmt.Sprintf("%d coordinates given, but %d expected", v, S.natoms), S.filename, []string{"WNext"}, true}
	}
	for i := 0; i < S.natoms; i++ {
		S.line = coordsEncode(S.line[:0], coord.Vec(i), S.prec)
		S.buf.Write(S.line)
	}
	var err error
	if len(box) > 0 && len(box[0]) >= 9 {
		b := box[0]
		_, err = fmt.Fprintf(S.buf, "* %.4f %.4f %.4f %.4f %.4f %.4f %.4f %.4f %.4f\n", b[0],
			b[1], b[2], b[3], b[4], b[5], b[6], b[7], b[8])
	} else {
		_, err = S.buf.WriteString("*\n")
	}
	if err != nil {
		return Error{err.Error(), S.filename, []string{"WNext"}, true}
	}
	return nil
}

// Close flushes the compressed stream and closes the file.
func (S *StfW) Close() error {
	if S == nil || S.f == nil {
		return nil
	}
	var errs []error
	if err := S.buf.Flush(); err != nil {
		errs = append(errs, err)
	}
	if err := S.h.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := S.f.Close(); err != nil {
		errs = append(errs, err)
	}
	S.f = nil
	S.writeable = false
	if err := errors.Join(errs...); err != nil {
		return Error{err.Error(), S.filename, []string{"Close"}, true}
	}
	return nil
}

func coordsEncode(dst []byte, f [3]float64, prec int) []byte {
	p := math.Pow(10.0, float64(prec))
	for i, v := range f {
		if i > 0 {
			dst = append(dst, ' ')
		}
		dst = strconv.AppendInt(dst, int64(math.RoundToEven(v*p)), 10)
	}
	return append(dst, '\n')
}

func coordsDecode(str string, temp *[3]float64, prec int) error {
	p := math.Pow(10.0, float64(prec))
	s := strings.Fields(str)
	if len(s) != 3 {
		return fmt.Errorf("Ill formated coordinates line in stf, %d fields: %q", len(s), str)
	}
	for i, v := range s {
		f, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("Can't parse coordinate %d (%s): %w", i, v, err)
		}
		temp[i] = float64(f) / p
	}
	return nil
}

// zstd.Decoder's Close doesn't return an error, so it isn't an io.ReadCloser.
type zstdReadCloser struct {
	*zstd.Decoder
}

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

// StfR is a STF trajectory open for reading.
type StfR struct {
	f        *os.File
	dec      io.ReadCloser
	h        *bufio.Reader
	natoms   int
	filename string
	prec     int
	readable bool
}

// New opens a STF trajectory for reading, and returns a pointer
// to the handle and a map with the header.
func New(name string) (*StfR, map[string]string, error) {
	S := &StfR{filename: name, natoms: -1, prec: defaultPrec}
	var err error
	S.f, err = os.Open(name)
	if err != nil {
		return nil, nil, Error{err.Error(), name, []string{"os.Open", "New"}, true}
	}
	var anyNewReader func(io.Reader) (io.ReadCloser, error)
	switch strings.ToLower(name)[len(name)-1] {
	case 'l':
		anyNewReader = func(a io.Reader) (io.ReadCloser, error) { return lzw.NewReader(a, lzw.MSB, lzwLitwidth), nil }
	case 'z':
		anyNewReader = func(a io.Reader) (io.ReadCloser, error) { return gzip.NewReader(a) }
	case 'r':
		anyNewReader = func(a io.Reader) (io.ReadCloser, error) { return flate.NewReader(a), nil }
	default:
		anyNewReader = func(a io.Reader) (io.ReadCloser, error) {
			r, err := zstd.NewReader(a)
			if err != nil {
				return nil, err
			}
			return zstdReadCloser{r}, nil
		}
	}
	S.dec, err = anyNewReader(bufio.NewReader(S.f))
	if err != nil {
		S.f.Close()
		return nil, nil, Error{"Can't start decompression: " + err.Error(), name, []string{"New"}, true}
	}
	S.h = bufio.NewReader(S.dec)
	m, err := S.readHeader()
	if err != nil {
		S.Close()
		return nil, nil, errDecorate(err, "New")
	}
	S.readable = true
	return S, m, nil
}

func (S *StfR) readHeader() (map[string]string, error) {
	m := make(map[string]string)
	for {
		str, err := S.h.ReadString('\n')
		if err != nil {
			return nil, Error{"Can't read header: " + err.Error(), S.filename, []string{"readHeader"}, true}
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			nat := strings.Fields(str)
			if len(nat) < 2 {
				return nil, Error{fmt.Sprintf("Can't read atom number from '%s'", str), S.filename, []string{"readHeader"}, true}
			}
			S.natoms, err = strconv.Atoi(nat[1])
			if err != nil || S.natoms <= 0 {
				return nil, Error{fmt.Sprintf("Can't read atom number from '%s'", nat[1]), S.filename, []string{"readHeader"}, true}
			}
			break
		}
		k, v, ok := strings.Cut(str, "=")
		if !ok {
			return nil, Error{fmt.Sprintf("Malformed header line %q", str), S.filename, []string{"readHeader"}, true}
		}
		m[k] = v
	}
	if p, ok := m["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err != nil || prec < 0 || prec > maxPrec {
			return nil, Error{fmt.Sprintf("Invalid precision %q", p), S.filename, []string{"readHeader"}, true}
		}
		S.prec = prec
	}
	return m, nil
}

// Readable returns true if the handle is readable (if it is possible to call Next on it)
func (S *StfR) Readable() bool {
	return S.readable
}

// Len returns the number of atoms in each frame of the trajectory.
func (S *StfR) Len() int {
	return S.natoms
}

// Next puts in c the coordinates for the next frame of the trajectory
// (the frame is checked and discarded if c is nil) and, if box is given and
// the frame has box information, the 9 box values in box[0].
// After the last frame it returns a chem.LastFrameError.
func (S *StfR) Next(c *v3.Matrix, box ...[]float64) error {
	if !S.readable {
		return Error{TrajUnIniRead, S.filename, []string{"Next"}, true}
	}
	if c != nil && c.NVecs() < S.natoms {
		return Error{NotEnoughSpace, S.filename, []string{"Next"}, true}
	}
	var temp [3]float64
	for i := 0; i < S.natoms; i++ {
		str, err := S.h.ReadString('\n')
		if err != nil {
			//EOF is only normal before the first atom of a frame.
			if errors.Is(err, io.EOF) && i == 0 && str == "" {
				S.Close()
				return chem.NewLastFrameError(S.filename, "stf", "Next")
			}
			return Error{err.Error(), S.filename, []string{"Next"}, true}
		}
		if err := coordsDecode(str, &temp, S.prec); err != nil {
			return Error{err.Error(), S.filename, []string{"Next"}, true}
		}
		if c == nil {
			continue
		}
		c.SetVec(i, temp)
	}
	s, err := S.h.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return Error{"Can't read the frame termination mark: " + err.Error(), S.filename, []string{"Next"}, true}
	}
	if !strings.HasPrefix(s, "*") {
		return Error{"Wrong number of atoms in frame", S.filename, []string{"Next"}, true}
	}
	if len(box) == 0 || len(box[0]) < 9 {
		return nil
	}
	fields := strings.Fields(s)
	if len(fields) < 10 { //The "*" and the 9 numbers
		log.Debug().Str("file", S.filename).Msg("Frame without box information")
		return nil
	}
	for j, v := range fields[1:10] {
		b, err := strconv.ParseFloat(v, 64)
		if err != nil {
			//a bad box isn't worth losing the frame.
			log.Warn().Str("file", S.filename).Err(err).Msg("Failed to read the box of a frame")
			for i := range box[0][:9] {
				box[0][i] = 0
			}
			break
		}
		box[0][j] = b
	}
	return nil
}

// Close closes the object, and marks it as unreadable
func (S *StfR) Close() error {
	if S.f == nil {
		return nil
	}
	S.readable = false
	err := S.dec.Close()
	if ferr := S.f.Close(); err == nil {
		err = ferr
	}
	S.f = nil
	if err != nil {
		return Error{err.Error(), S.filename, []string{"Close"}, true}
	}
	return nil
}
