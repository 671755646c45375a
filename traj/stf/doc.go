/*
 * doc.go, part of trajimg.
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

// Package stf implements the simple trajectory format, a compressed text
// format meant to be trivial to read and write from any language.
//
// A STF file has a header of key=value lines, ended by a line starting
// with "**", whitespace and the number of atoms per frame. The header
// carries at least the precision, e.g. "prec=2".
//
// After the header, each frame has one line per atom with the x, y and z
// coordinates in Angstrom, multiplied by 10 to the power of the precision
// and rounded to integers. A frame ends with a line starting with "*",
// optionally followed by the 9 components of the 3 box vectors.
//
// The "**" sequence is only used to end the header.
//
// The whole stream is compressed. The compression is chosen by the last
// letter of the file name: 'l' for lzw, 'z' for gzip, 'r' for raw deflate,
// and z-standard for anything else (the usual extension being .stf).
// Writers use the best z-standard compression level, with no option to
// change it.
package stf
