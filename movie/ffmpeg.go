/*
 * ffmpeg.go, part of trajimg.
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

package movie

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// FFmpeg encodes videos with the ffmpeg executable. The frames are
// streamed to it as PNG images through its standard input. The zero
// value writes H.264 in yuv420p, which most players understand.
type FFmpeg struct {
	Binary    string   //ffmpeg if empty
	Codec     string   //libx264 if empty
	PixFmt    string   //yuv420p if empty
	CRF       int      //constant rate factor, the codec's default if 0
	ExtraArgs []string //added right before the output file
	Logger    *zerolog.Logger
}

// Args returns the ffmpeg arguments used to write output.
func (F *FFmpeg) Args(output string, fps float64) []string {
	codec := orString(F.Codec, "libx264")
	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-f", "image2pipe", "-framerate", strconv.FormatFloat(fps, 'f', -1, 64),
		"-c:v", "png", "-i", "-",
		"-c:v", codec,
		"-pix_fmt", orString(F.PixFmt, "yuv420p"),
		//yuv420p requires even dimensions.
		"-vf", "scale=trunc(iw/2)*2:trunc(ih/2)*2",
	}
	if F.CRF > 0 {
		args = append(args, "-crf", strconv.Itoa(F.CRF))
	}
	args = append(args, F.ExtraArgs...)
	return append(args, output)
}

func orString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Encode runs ffmpeg to write frames to output. Cancelling ctx kills
// ffmpeg.
func (F *FFmpeg) Encode(ctx context.Context, frames []string, output string, fps float64) error {
	if err := checkFrames(frames, fps); err != nil {
		return err
	}
	bin := orString(F.Binary, "ffmpeg")
	path, err := exec.LookPath(bin)
	if err != nil {
		return fmt.Errorf("movie: %s not found: %w", bin, err)
	}
	logger := zerolog.Nop()
	if F.Logger != nil {
		logger = *F.Logger
	}
	args := F.Args(output, fps)
	logger.Debug().Str("ffmpeg", path).Strs("args", args).Int("frames", len(frames)).Msg("Starting encoder")
	cmd := exec.CommandContext(ctx, path, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("movie: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("movie: starting %s: %w", bin, err)
	}
	feedErr := feed(ctx, stdin, frames)
	stdin.Close()
	waitErr := cmd.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if waitErr != nil {
		return fmt.Errorf("movie: %s failed: %w: %s", bin, waitErr, strings.TrimSpace(stderr.String()))
	}
	if feedErr != nil {
		return feedErr
	}
	logger.Info().Str("output", output).Int("frames", len(frames)).Float64("fps", fps).Msg("Movie written")
	return nil
}

// feed copies the frame files, in order, to w.
func feed(ctx context.Context, w io.Writer, frames []string) error {
	for _, name := range frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		f, err := os.Open(name)
		if err != nil {
			return fmt.Errorf("movie: %w", err)
		}
		_, err = io.Copy(w, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("movie: sending %s to the encoder: %w", name, err)
		}
	}
	return nil
}
