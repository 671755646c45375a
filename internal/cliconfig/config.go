/*
 * config.go, part of trajimg.
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

// Package cliconfig assembles the configuration of the trajimg command
// from defaults, a TOML or YAML file, TRAJIMG_* environment variables and
// command line flags, in increasing order of precedence.
package cliconfig

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rmera/trajimg/chem"
	"github.com/rmera/trajimg/render"
	"github.com/rs/zerolog"
)

// Config holds the configuration of a rendering run.
type Config struct {
	Topology   string
	Trajectory string
	Output     string //image folder

	Start, Stop, Step int //frames rendered, as in a Go slice. Stop < 0 means the last frame.

	Views     int
	Smooth    int
	Align     string //selection fitted to superimpose the frames; none if empty
	Selection string
	// Representations can only be given in the config file.
	Representations []render.Representation

	Width, Height, Factor int
	Background            string
	Zoom                  float64
	RotX, RotY, RotZ      float64

	Movie  string
	FPS    float64
	FFmpeg string //ffmpeg executable
	Codec  string
	CRF    int

	Resume       bool
	SaveSmoothed string
	Report       string
	LogLevel     string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	vo := render.DefaultViewOptions()
	return Config{
		Stop:     -1,
		Step:     1,
		Views:    10,
		Smooth:   10,
		Width:    vo.Width,
		Height:   vo.Height,
		Factor:   vo.Factor,
		Zoom:     vo.Zoom,
		FPS:      30,
		FFmpeg:   "ffmpeg",
		Codec:    "libx264",
		LogLevel: "info",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Topology == "" {
		return fmt.Errorf("a topology file is required")
	}
	if c.Output == "" {
		return fmt.Errorf("an output folder is required")
	}
	if c.Start < 0 {
		return fmt.Errorf("start frame must not be negative")
	}
	if c.Step <= 0 {
		return fmt.Errorf("step must be positive")
	}
	if c.Stop >= 0 && c.Stop <= c.Start {
		return fmt.Errorf("stop frame %d must be larger than start frame %d", c.Stop, c.Start)
	}
	if c.Views <= 0 {
		return fmt.Errorf("views must be positive")
	}
	if c.Smooth < 0 {
		return fmt.Errorf("smoothing window must not be negative")
	}
	if c.Width <= 0 || c.Height <= 0 || c.Factor <= 0 {
		return fmt.Errorf("image size %dx%d and factor %d must be positive", c.Width, c.Height, c.Factor)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive")
	}
	if c.CRF < 0 || c.CRF > 51 {
		return fmt.Errorf("crf %d out of [0,51]", c.CRF)
	}
	if c.Background != "" {
		if _, err := render.ParseColor(c.Background); err != nil {
			return err
		}
	}
	if _, err := chem.CompileSelection(c.Align); err != nil {
		return fmt.Errorf("align: %w", err)
	}
	for _, r := range c.Representations {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

// Indices returns the frames to render from a trajectory of n frames.
func (c *Config) Indices(n int) ([]int, error) {
	stop := c.Stop
	if stop < 0 || stop > n {
		stop = n
	}
	if c.Start >= stop {
		return nil, fmt.Errorf("start frame %d beyond the %d frames of the trajectory", c.Start, n)
	}
	ret := make([]int, 0, (stop-c.Start+c.Step-1)/c.Step)
	for i := c.Start; i < stop; i += c.Step {
		ret = append(ret, i)
	}
	return ret, nil
}

// ViewOptions returns the render options set by c.
func (c *Config) ViewOptions() (render.ViewOptions, error) {
	vo := render.DefaultViewOptions()
	vo.Width, vo.Height, vo.Factor = c.Width, c.Height, c.Factor
	vo.Zoom = c.Zoom
	vo.RotX, vo.RotY, vo.RotZ = c.RotX, c.RotY, c.RotZ
	vo.Selection = c.Selection
	vo.Representations = c.Representations
	if c.Background != "" {
		bg, err := render.ParseColor(c.Background)
		if err != nil {
			return vo, err
		}
		vo.Background = bg
	}
	return vo, nil
}

// configSetter applies values only for flags that were not set
// explicitly on the command line.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setInt(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

func (s *configSetter) setFloat(flag string, value *float64, dst *float64) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses an environment value.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = f
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
