package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/rmera/trajimg/internal/cliconfig"
	"github.com/rmera/trajimg/movie"
)

func TestWarnOnError(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	warnOnError(log, "cleanup", func() error { return nil })
	assert.Empty(t, buf.String())

	warnOnError(log, "cleanup", func() error { return errors.New("view 2: closed twice") })
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"error":"view 2: closed twice"`)
	assert.Contains(t, buf.String(), `"message":"cleanup failed"`)
}

func TestEncoderFor(t *testing.T) {
	cfg := cliconfig.DefaultConfig()
	log := zerolog.Nop()
	assert.IsType(t, &movie.GIF{}, encoderFor("md.GIF", cfg, log))
	enc, ok := encoderFor("md.mp4", cfg, log).(*movie.FFmpeg)
	if assert.True(t, ok) {
		assert.Equal(t, cfg.Codec, enc.Codec)
		assert.Equal(t, cfg.FFmpeg, enc.Binary)
	}
}
