package cliconfig

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rmera/trajimg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	c := DefaultConfig()
	c.Topology = "sys.pdb"
	c.Output = "frames"
	return c
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"defaults with inputs", func(*Config) {}, ""},
		{"no topology", func(c *Config) { c.Topology = "" }, "topology"},
		{"no output", func(c *Config) { c.Output = "" }, "output"},
		{"zero step", func(c *Config) { c.Step = 0 }, "step"},
		{"stop before start", func(c *Config) { c.Start, c.Stop = 5, 5 }, "stop frame"},
		{"no views", func(c *Config) { c.Views = 0 }, "views"},
		{"negative smoothing", func(c *Config) { c.Smooth = -1 }, "smoothing"},
		{"zero fps", func(c *Config) { c.FPS = 0 }, "fps"},
		{"bad size", func(c *Config) { c.Width = 0 }, "image size"},
		{"bad crf", func(c *Config) { c.CRF = 60 }, "crf"},
		{"bad background", func(c *Config) { c.Background = "#12" }, "color"},
		{"bad alignment", func(c *Config) { c.Align = "not" }, "align"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log level"},
		{"bad representation", func(c *Config) {
			c.Representations = []render.Representation{{Type: "cartoon"}}
		}, "cartoon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.modify(&c)
			err := c.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestIndices(t *testing.T) {
	c := validConfig()
	got, err := c.Indices(5)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)

	c.Start, c.Stop, c.Step = 1, 8, 3
	got, err = c.Indices(100)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 7}, got)

	c.Stop = 200
	got, err = c.Indices(6)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4}, got)

	c.Start = 10
	_, err = c.Indices(6)
	assert.Error(t, err)
}

func TestViewOptions(t *testing.T) {
	c := validConfig()
	c.Width, c.Height, c.Factor = 320, 200, 2
	c.Background = "white"
	c.Selection = "protein and not hydrogen"
	c.RotY = 90
	vo, err := c.ViewOptions()
	require.NoError(t, err)
	assert.Equal(t, 320, vo.Width)
	assert.Equal(t, 2, vo.Factor)
	assert.Equal(t, 0.3, vo.Zoom)
	assert.Equal(t, 90.0, vo.RotY)
	assert.Equal(t, "protein and not hydrogen", vo.Selection)
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, vo.Background)

	c.Background = ""
	vo, err = c.ViewOptions()
	require.NoError(t, err)
	assert.Nil(t, vo.Background)
}

func TestLoadFileConfig(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "trajimg.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(`
topology = "sys.pdb"
trajectory = "md.dcd"
output = "frames"
stop = 100
smooth = 0
fps = 24.0
resume = true

[[representations]]
type = "licorice"
selection = "protein"
color = "chainid"

[[representations]]
type = "spacefill"
selection = "ion"
`), 0o644))
	yamlPath := filepath.Join(dir, "trajimg.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
topology: sys.pdb
trajectory: md.dcd
output: frames
stop: 100
smooth: 0
fps: 24.0
resume: true
representations:
  - type: licorice
    selection: protein
    color: chainid
  - type: spacefill
    selection: ion
`), 0o644))

	fromTOML, err := LoadFileConfig(tomlPath)
	require.NoError(t, err)
	fromYAML, err := LoadFileConfig(yamlPath)
	require.NoError(t, err)
	if diff := cmp.Diff(fromTOML, fromYAML); diff != "" {
		t.Errorf("TOML and YAML configs differ (-toml +yaml):\n%s", diff)
	}
	require.NotNil(t, fromTOML.Smooth)
	assert.Zero(t, *fromTOML.Smooth)
	assert.Nil(t, fromTOML.Views)
	assert.Len(t, fromTOML.Representations, 2)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("colour = \"red\"\n"), 0o644))
	_, err = LoadFileConfig(bad)
	assert.Error(t, err, "unknown keys are rejected")

	_, err = LoadFileConfig(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestApplyFileConfig(t *testing.T) {
	views, smooth := 4, 0
	fps := 12.0
	yes := true
	fc := FileConfig{
		Topology:  "file.pdb",
		Output:    "file-frames",
		Views:     &views,
		Smooth:    &smooth,
		FPS:       &fps,
		Resume:    &yes,
		Selection: "nucleic",
	}
	c := validConfig()
	c.Output = "flag-frames"
	ApplyFileConfig(&c, fc, map[string]bool{"out": true, "views": true})
	assert.Equal(t, "file.pdb", c.Topology)
	assert.Equal(t, "flag-frames", c.Output, "flag wins over file")
	assert.Equal(t, 10, c.Views, "flag wins over file")
	assert.Equal(t, 0, c.Smooth, "zero from the file disables smoothing")
	assert.Equal(t, 12.0, c.FPS)
	assert.True(t, c.Resume)
	assert.Equal(t, "nucleic", c.Selection)
	assert.Equal(t, 600, c.Height, "absent values keep their defaults")
}

func TestApplyEnvConfig(t *testing.T) {
	t.Setenv("TRAJIMG_TOP", "env.pdb")
	t.Setenv("TRAJIMG_VIEWS", "3")
	t.Setenv("TRAJIMG_FPS", "60")
	t.Setenv("TRAJIMG_RESUME", "1")
	t.Setenv("TRAJIMG_SMOOTH", "7")
	c := validConfig()
	c.Smooth = 2
	require.NoError(t, ApplyEnvConfig(&c, map[string]bool{"smooth": true}))
	assert.Equal(t, "env.pdb", c.Topology)
	assert.Equal(t, 3, c.Views)
	assert.Equal(t, 60.0, c.FPS)
	assert.True(t, c.Resume)
	assert.Equal(t, 2, c.Smooth)

	t.Setenv("TRAJIMG_START", "5")
	t.Setenv("TRAJIMG_STOP", "50")
	t.Setenv("TRAJIMG_STEP", "5")
	t.Setenv("TRAJIMG_ROT_X", "90")
	t.Setenv("TRAJIMG_ROT_Y", "-45.5")
	t.Setenv("TRAJIMG_ROT_Z", "180")
	t.Setenv("TRAJIMG_SAVE_SMOOTHED", "smooth.dcd")
	t.Setenv("TRAJIMG_REPORT", "report.png")
	require.NoError(t, ApplyEnvConfig(&c, map[string]bool{"rot-z": true}))
	assert.Equal(t, []int{5, 50, 5}, []int{c.Start, c.Stop, c.Step})
	assert.Equal(t, 90.0, c.RotX)
	assert.Equal(t, -45.5, c.RotY)
	assert.Equal(t, 0.0, c.RotZ)
	assert.Equal(t, "smooth.dcd", c.SaveSmoothed)
	assert.Equal(t, "report.png", c.Report)

	t.Setenv("TRAJIMG_STEP", "often")
	assert.Error(t, ApplyEnvConfig(&c, nil))
	t.Setenv("TRAJIMG_STEP", "")
	t.Setenv("TRAJIMG_WIDTH", "wide")
	assert.Error(t, ApplyEnvConfig(&c, nil))
	t.Setenv("TRAJIMG_WIDTH", "")
	t.Setenv("TRAJIMG_ZOOM", "close")
	assert.Error(t, ApplyEnvConfig(&c, nil))
}

// flags > environment > file > defaults
func TestPrecedence(t *testing.T) {
	t.Setenv("TRAJIMG_VIEWS", "6")
	t.Setenv("TRAJIMG_SELECTION", "water")
	views, fpsInt := 2, 0
	fps := 15.0
	fc := FileConfig{Views: &views, FPS: &fps, Selection: "ion", Width: &fpsInt}
	c := validConfig()
	c.Selection = "protein" //set by a flag
	changed := map[string]bool{"selection": true}
	ApplyFileConfig(&c, fc, changed)
	require.NoError(t, ApplyEnvConfig(&c, changed))
	assert.Equal(t, "protein", c.Selection)
	assert.Equal(t, 6, c.Views)
	assert.Equal(t, 15.0, c.FPS)
	assert.Equal(t, 0, c.Width)
	assert.Error(t, c.Validate(), "zero width from the file must be caught")
	assert.Equal(t, 1, c.Step)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, "warn")
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	l = NewLogger(&buf, "nonsense")
	l.Debug().Msg("debug")
	l.Info().Msg("info")
	assert.NotContains(t, buf.String(), "debug")
	assert.Contains(t, buf.String(), "info")
}
