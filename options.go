/*
 * options.go, part of trajimg.
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

package trajimg

import (
	"github.com/rmera/trajimg/movie"
	"github.com/rmera/trajimg/render"
	"github.com/rs/zerolog"
)

const (
	// DefaultSmoothingWindow is the number of frames averaged around
	// each frame when no window is given.
	DefaultSmoothingWindow = 10
	// DefaultViews is the number of views, and rendering goroutines,
	// used when no number is given.
	DefaultViews = 10
)

// Option configures a Generator.
type Option func(*options)

type options struct {
	window       int
	align        string
	views        int
	reps         []render.Representation
	selection    string
	viewOpts     render.ViewOptions
	logger       zerolog.Logger
	encoder      movie.Encoder
	skipExisting bool
	progress     func(done, total int)
}

func defaultOptions() options {
	return options{
		window:   DefaultSmoothingWindow,
		views:    DefaultViews,
		viewOpts: render.DefaultViewOptions(),
		logger:   zerolog.Nop(),
	}
}

// WithSmoothingWindow sets the width, in frames, of the running average
// applied to the positions. A window of 1 or less disables smoothing.
func WithSmoothingWindow(w int) Option {
	return func(o *options) {
		o.window = w
	}
}

// WithAlignment superimposes every frame onto the first one, fitting the
// atoms matched by sel, before smoothing and rendering.
func WithAlignment(sel string) Option {
	return func(o *options) {
		o.align = sel
	}
}

// WithViews sets the number of views that render frames concurrently.
func WithViews(n int) Option {
	return func(o *options) {
		o.views = n
	}
}

// WithRepresentations sets the representations drawn on every view,
// replacing the default ball and sticks for protein and nucleic acids.
func WithRepresentations(reps ...render.Representation) Option {
	return func(o *options) {
		o.reps = append(o.reps, reps...)
	}
}

// WithSelection draws the atoms matching sel as ball and sticks instead
// of the protein and nucleic acids.
func WithSelection(sel string) Option {
	return func(o *options) {
		o.selection = sel
	}
}

// WithViewOptions sets the image size, background, orientation and zoom
// of the views. Representations and selection given with other options
// take precedence over the ones in vo.
func WithViewOptions(vo render.ViewOptions) Option {
	return func(o *options) {
		o.viewOpts = vo
	}
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithEncoder sets the encoder used by MakeMovie. By default it is
// chosen from the extension of the output file.
func WithEncoder(e movie.Encoder) Option {
	return func(o *options) {
		o.encoder = e
	}
}

// WithSkipExisting makes the generator keep images already present in
// the image folder instead of rendering them again.
func WithSkipExisting(skip bool) Option {
	return func(o *options) {
		o.skipExisting = skip
	}
}

// WithProgress sets a function called after each image is written.
// It is called from the rendering goroutines, so it must be safe for
// concurrent use.
func WithProgress(f func(done, total int)) Option {
	return func(o *options) {
		o.progress = f
	}
}
