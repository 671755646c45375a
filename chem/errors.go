/*
 * errors.go, part of trajimg.
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

package chem

import (
	"errors"
	"fmt"
	"strings"
)

// Error is the interface for errors that the packages of this module implement. The Decorate
// method allows to add the name of the functions an error passes through, without changing its
// type or wrapping it around something else. If passed an empty string, it just returns the
// current value.
type Error interface {
	Error() string
	Decorate(string) []string
}

// TrajError is the interface for errors in trajectories
type TrajError interface {
	Error
	Critical() bool
	FileName() string
	Format() string
}

// LastFrameError distinguishes the harmless "no more frames" condition
// from other TrajErrors.
type LastFrameError interface {
	TrajError
	NormalLastFrameTermination() //does nothing
}

// CError is the general error of the chem package. It fulfills Error.
type CError struct {
	msg      string
	deco     []string
	critical bool
}

func newCError(msg string, critical bool, deco ...string) *CError {
	return &CError{msg: msg, critical: critical, deco: deco}
}

func (err *CError) Error() string {
	if len(err.deco) == 0 {
		return err.msg
	}
	return fmt.Sprintf("%s (%s)", err.msg, strings.Join(err.deco, " < "))
}

// Decorate adds deco to the list of callers, and returns the list.
func (err *CError) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// Critical returns true if the error is critical, false otherwise
func (err *CError) Critical() bool { return err.critical }

// errDecorate decorates err with the caller's name if err implements Error,
// and returns it unchanged otherwise.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(Error); ok {
		e.Decorate(caller)
	}
	return err
}

// lastFrameError implements LastFrameError
type lastFrameError struct {
	deco     []string
	fileName string
	format   string
}

// NewLastFrameError returns the error that trajectory readers give
// when the last frame has already been read.
func NewLastFrameError(filename, format, caller string) LastFrameError {
	return &lastFrameError{fileName: filename, format: format, deco: []string{caller}}
}

func (E *lastFrameError) NormalLastFrameTermination() {}

func (E *lastFrameError) FileName() string { return E.fileName }

func (E *lastFrameError) Error() string { return "EOF" }

func (E *lastFrameError) Critical() bool { return false }

func (E *lastFrameError) Format() string { return E.format }

func (E *lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

// IsLastFrame returns true if err, or an error it wraps, signals the
// normal end of a trajectory.
func IsLastFrame(err error) bool {
	var lf LastFrameError
	return errors.As(err, &lf)
}
