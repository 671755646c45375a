package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables
// (TRAJIMG_*), except for the flags in changed.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("top", os.Getenv("TRAJIMG_TOP"), &cfg.Topology)
	s.setString("traj", os.Getenv("TRAJIMG_TRAJ"), &cfg.Trajectory)
	s.setString("out", os.Getenv("TRAJIMG_OUT"), &cfg.Output)
	s.setString("align", os.Getenv("TRAJIMG_ALIGN"), &cfg.Align)
	s.setString("selection", os.Getenv("TRAJIMG_SELECTION"), &cfg.Selection)
	s.setString("background", os.Getenv("TRAJIMG_BACKGROUND"), &cfg.Background)
	s.setString("movie", os.Getenv("TRAJIMG_MOVIE"), &cfg.Movie)
	s.setString("ffmpeg", os.Getenv("TRAJIMG_FFMPEG"), &cfg.FFmpeg)
	s.setString("codec", os.Getenv("TRAJIMG_CODEC"), &cfg.Codec)
	s.setString("save-smoothed", os.Getenv("TRAJIMG_SAVE_SMOOTHED"), &cfg.SaveSmoothed)
	s.setString("report", os.Getenv("TRAJIMG_REPORT"), &cfg.Report)
	s.setString("log-level", os.Getenv("TRAJIMG_LOG_LEVEL"), &cfg.LogLevel)

	ints := []struct {
		flag, env string
		dst       *int
	}{
		{"start", "TRAJIMG_START", &cfg.Start},
		{"stop", "TRAJIMG_STOP", &cfg.Stop},
		{"step", "TRAJIMG_STEP", &cfg.Step},
		{"views", "TRAJIMG_VIEWS", &cfg.Views},
		{"smooth", "TRAJIMG_SMOOTH", &cfg.Smooth},
		{"width", "TRAJIMG_WIDTH", &cfg.Width},
		{"height", "TRAJIMG_HEIGHT", &cfg.Height},
		{"factor", "TRAJIMG_FACTOR", &cfg.Factor},
		{"crf", "TRAJIMG_CRF", &cfg.CRF},
	}
	for _, v := range ints {
		if err := s.setIntFromString(v.flag, os.Getenv(v.env), v.dst); err != nil {
			return err
		}
	}
	floats := []struct {
		flag, env string
		dst       *float64
	}{
		{"fps", "TRAJIMG_FPS", &cfg.FPS},
		{"zoom", "TRAJIMG_ZOOM", &cfg.Zoom},
		{"rot-x", "TRAJIMG_ROT_X", &cfg.RotX},
		{"rot-y", "TRAJIMG_ROT_Y", &cfg.RotY},
		{"rot-z", "TRAJIMG_ROT_Z", &cfg.RotZ},
	}
	for _, v := range floats {
		if err := s.setFloatFromString(v.flag, os.Getenv(v.env), v.dst); err != nil {
			return err
		}
	}

	s.setBoolFromString("resume", os.Getenv("TRAJIMG_RESUME"), &cfg.Resume)

	return nil
}
