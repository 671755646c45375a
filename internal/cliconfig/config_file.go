/*
 * config_file.go, part of trajimg.
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

package cliconfig

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rmera/trajimg/render"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config as read from a file. Pointers distinguish
// absent values from zeros.
type FileConfig struct {
	Topology        string                  `toml:"topology" yaml:"topology"`
	Trajectory      string                  `toml:"trajectory" yaml:"trajectory"`
	Output          string                  `toml:"output" yaml:"output"`
	Start           *int                    `toml:"start" yaml:"start"`
	Stop            *int                    `toml:"stop" yaml:"stop"`
	Step            *int                    `toml:"step" yaml:"step"`
	Views           *int                    `toml:"views" yaml:"views"`
	Smooth          *int                    `toml:"smooth" yaml:"smooth"`
	Align           string                  `toml:"align" yaml:"align"`
	Selection       string                  `toml:"selection" yaml:"selection"`
	Representations []render.Representation `toml:"representations" yaml:"representations"`
	Width           *int                    `toml:"width" yaml:"width"`
	Height          *int                    `toml:"height" yaml:"height"`
	Factor          *int                    `toml:"factor" yaml:"factor"`
	Background      string                  `toml:"background" yaml:"background"`
	Zoom            *float64                `toml:"zoom" yaml:"zoom"`
	RotX            *float64                `toml:"rot_x" yaml:"rot_x"`
	RotY            *float64                `toml:"rot_y" yaml:"rot_y"`
	RotZ            *float64                `toml:"rot_z" yaml:"rot_z"`
	Movie           string                  `toml:"movie" yaml:"movie"`
	FPS             *float64                `toml:"fps" yaml:"fps"`
	FFmpeg          string                  `toml:"ffmpeg" yaml:"ffmpeg"`
	Codec           string                  `toml:"codec" yaml:"codec"`
	CRF             *int                    `toml:"crf" yaml:"crf"`
	Resume          *bool                   `toml:"resume" yaml:"resume"`
	SaveSmoothed    string                  `toml:"save_smoothed" yaml:"save_smoothed"`
	Report          string                  `toml:"report" yaml:"report"`
	LogLevel        string                  `toml:"log_level" yaml:"log_level"`
}

// LoadFileConfig reads a config file. Files ending in .yaml or .yml are
// parsed as YAML, anything else as TOML. Unknown keys are an error.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&fc); err != nil {
			return fc, fmt.Errorf("%s: %w", path, err)
		}
	default:
		dec := toml.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&fc); err != nil {
			return fc, fmt.Errorf("%s: %w", path, err)
		}
	}
	return fc, nil
}

// DefaultConfigPath returns trajimg.toml in the working directory if it
// exists, or an empty string.
func DefaultConfigPath() string {
	if FileExists("trajimg.toml") {
		return "trajimg.toml"
	}
	return ""
}

// ApplyFileConfig applies fc to cfg, except for the flags in changed.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) {
	s := newConfigSetter(changed)

	s.setString("top", fc.Topology, &cfg.Topology)
	s.setString("traj", fc.Trajectory, &cfg.Trajectory)
	s.setString("out", fc.Output, &cfg.Output)
	s.setString("align", fc.Align, &cfg.Align)
	s.setString("selection", fc.Selection, &cfg.Selection)
	s.setString("background", fc.Background, &cfg.Background)
	s.setString("movie", fc.Movie, &cfg.Movie)
	s.setString("ffmpeg", fc.FFmpeg, &cfg.FFmpeg)
	s.setString("codec", fc.Codec, &cfg.Codec)
	s.setString("save-smoothed", fc.SaveSmoothed, &cfg.SaveSmoothed)
	s.setString("report", fc.Report, &cfg.Report)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setInt("start", fc.Start, &cfg.Start)
	s.setInt("stop", fc.Stop, &cfg.Stop)
	s.setInt("step", fc.Step, &cfg.Step)
	s.setInt("views", fc.Views, &cfg.Views)
	s.setInt("smooth", fc.Smooth, &cfg.Smooth)
	s.setInt("width", fc.Width, &cfg.Width)
	s.setInt("height", fc.Height, &cfg.Height)
	s.setInt("factor", fc.Factor, &cfg.Factor)
	s.setInt("crf", fc.CRF, &cfg.CRF)

	s.setFloat("zoom", fc.Zoom, &cfg.Zoom)
	s.setFloat("rot-x", fc.RotX, &cfg.RotX)
	s.setFloat("rot-y", fc.RotY, &cfg.RotY)
	s.setFloat("rot-z", fc.RotZ, &cfg.RotZ)
	s.setFloat("fps", fc.FPS, &cfg.FPS)

	s.setBool("resume", fc.Resume, &cfg.Resume)

	if len(fc.Representations) > 0 {
		cfg.Representations = fc.Representations
	}
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
