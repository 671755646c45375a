package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/rmera/trajimg"
	"github.com/rmera/trajimg/internal/cliconfig"
	"github.com/rmera/trajimg/movie"
	"github.com/rmera/trajimg/traj"
)

var longHelp = strings.TrimSpace(`
Render the frames of a molecular dynamics trajectory to PNG images, using
several views in parallel, and assemble them into a movie.

Topologies are read from PDB or XYZ files; trajectories from DCD (also
gzip, zstd or lzw compressed) or STF files. Without a trajectory, the
models of the topology file are used as frames.

Configuration is taken from a TOML or YAML file, TRAJIMG_* environment
variables and flags, with flags taking precedence.
`)

var exampleUsage = strings.TrimSpace(`
  trajimg render --top sys.pdb --traj md.dcd --out frames --step 10 --movie md.mp4
  trajimg render --config trajimg.yaml --resume
  trajimg encode --frames frames --out md.gif --fps 15
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	log := cliconfig.Logger("info")

	root := &cobra.Command{
		Use:           "trajimg",
		Short:         "Render molecular dynamics trajectories to images and movies",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(renderCommand(&log), encodeCommand(&log))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("trajimg")
		os.Exit(1)
	}
}

func renderCommand(log *zerolog.Logger) *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render trajectory frames to PNG files, optionally making a movie",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}
			if cfgFile != "" {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				cliconfig.ApplyFileConfig(&cfg, fc, changed)
			}
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			*log = cliconfig.Logger(cfg.LogLevel)
			log.Debug().Interface("config", cfg).Msg("configuration")
			return render(cmd.Context(), cfg, *log)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgPath, "config", "", "path to a TOML or YAML config file (default: ./trajimg.toml if present)")
	f.StringVar(&cfg.Topology, "top", cfg.Topology, "topology file (PDB or XYZ)")
	f.StringVar(&cfg.Trajectory, "traj", cfg.Trajectory, "trajectory file (DCD or STF); the topology models if empty")
	f.StringVar(&cfg.Output, "out", cfg.Output, "folder for the frame images")
	f.IntVar(&cfg.Start, "start", cfg.Start, "first frame to render")
	f.IntVar(&cfg.Stop, "stop", cfg.Stop, "frame to stop at, not rendered; -1 renders up to the last one")
	f.IntVar(&cfg.Step, "step", cfg.Step, "render every step-th frame")
	f.IntVar(&cfg.Views, "views", cfg.Views, "number of views rendering in parallel")
	f.IntVar(&cfg.Smooth, "smooth", cfg.Smooth, "smoothing window in frames; 0 or 1 disables smoothing")
	f.StringVar(&cfg.Align, "align", cfg.Align, "superimpose the frames fitting these atoms, e.g. \"protein and .CA\"")
	f.StringVar(&cfg.Selection, "selection", cfg.Selection, "atoms drawn as ball and sticks (default: protein and nucleic acids)")
	f.IntVar(&cfg.Width, "width", cfg.Width, "image width in pixels")
	f.IntVar(&cfg.Height, "height", cfg.Height, "image height in pixels")
	f.IntVar(&cfg.Factor, "factor", cfg.Factor, "scale factor applied to width and height")
	f.StringVar(&cfg.Background, "background", cfg.Background, "background color, name or hex (default: transparent)")
	f.Float64Var(&cfg.Zoom, "zoom", cfg.Zoom, "zoom applied after fitting the molecule, as a fraction")
	f.Float64Var(&cfg.RotX, "rot-x", cfg.RotX, "rotation around x, in degrees")
	f.Float64Var(&cfg.RotY, "rot-y", cfg.RotY, "rotation around y, in degrees")
	f.Float64Var(&cfg.RotZ, "rot-z", cfg.RotZ, "rotation around z, in degrees")
	f.StringVar(&cfg.Movie, "movie", cfg.Movie, "movie to write after rendering (.mp4, .gif...)")
	f.Float64Var(&cfg.FPS, "fps", cfg.FPS, "movie frame rate")
	f.StringVar(&cfg.FFmpeg, "ffmpeg", cfg.FFmpeg, "ffmpeg executable")
	f.StringVar(&cfg.Codec, "codec", cfg.Codec, "ffmpeg video codec")
	f.IntVar(&cfg.CRF, "crf", cfg.CRF, "ffmpeg constant rate factor; 0 uses the codec default")
	f.BoolVar(&cfg.Resume, "resume", cfg.Resume, "keep images already in the output folder")
	f.StringVar(&cfg.SaveSmoothed, "save-smoothed", cfg.SaveSmoothed, "write the smoothed trajectory (DCD, STF or PDB)")
	f.StringVar(&cfg.Report, "report", cfg.Report, "write a plot of the displacement caused by smoothing")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	return cmd
}

func render(ctx context.Context, cfg cliconfig.Config, log zerolog.Logger) error {
	t, err := traj.Load(cfg.Topology, cfg.Trajectory)
	if err != nil {
		return fmt.Errorf("load trajectory: %w", err)
	}
	log.Info().Str("topology", cfg.Topology).Str("trajectory", cfg.Trajectory).
		Int("atoms", t.NAtoms()).Int("frames", t.Len()).Msg("trajectory loaded")
	indices, err := cfg.Indices(t.Len())
	if err != nil {
		return err
	}
	vo, err := cfg.ViewOptions()
	if err != nil {
		return err
	}
	step := max(1, len(indices)/10)
	g, err := trajimg.New(t, cfg.Output, indices,
		trajimg.WithSmoothingWindow(cfg.Smooth),
		trajimg.WithViews(cfg.Views),
		trajimg.WithAlignment(cfg.Align),
		trajimg.WithViewOptions(vo),
		trajimg.WithLogger(log),
		trajimg.WithSkipExisting(cfg.Resume),
		trajimg.WithEncoder(encoderFor(cfg.Movie, cfg, log)),
		trajimg.WithProgress(func(done, total int) {
			if done%step == 0 || done == total {
				log.Info().Int("done", done).Int("total", total).Msg("generating images")
			}
		}),
	)
	if err != nil {
		return err
	}
	defer warnOnError(log, "cleanup", g.Cleanup)

	if err := g.Run(ctx); err != nil {
		return err
	}
	if cfg.SaveSmoothed != "" {
		if err := traj.Save(g.Trajectory(), cfg.SaveSmoothed); err != nil {
			return fmt.Errorf("save smoothed trajectory: %w", err)
		}
		log.Info().Str("file", cfg.SaveSmoothed).Msg("smoothed trajectory written")
	}
	if cfg.Report != "" {
		if err := g.SmoothingReport(cfg.Report); err != nil {
			return err
		}
	}
	if cfg.Movie != "" {
		return g.MakeMovie(ctx, cfg.Movie, cfg.FPS)
	}
	return nil
}

// encoderFor returns a GIF encoder for .gif files and ffmpeg, as set up
// in cfg, for anything else.
// warnOnError runs f and logs its error, for calls whose error can only
// be reported.
func warnOnError(log zerolog.Logger, what string, f func() error) {
	if err := f(); err != nil {
		log.Warn().Err(err).Msg(what + " failed")
	}
}

func encoderFor(output string, cfg cliconfig.Config, log zerolog.Logger) movie.Encoder {
	if strings.EqualFold(filepath.Ext(output), ".gif") {
		return &movie.GIF{}
	}
	return &movie.FFmpeg{Binary: cfg.FFmpeg, Codec: cfg.Codec, CRF: cfg.CRF, Logger: &log}
}

func encodeCommand(log *zerolog.Logger) *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	var frames string

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Assemble the PNG files of a folder, in natural order, into a movie",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if frames == "" || cfg.Movie == "" {
				return fmt.Errorf("--frames and --out are required")
			}
			if cfg.FPS <= 0 {
				return fmt.Errorf("fps must be positive")
			}
			*log = cliconfig.Logger(cfg.LogLevel)
			names, err := movie.CollectFrames(frames, ".png")
			if err != nil {
				return err
			}
			log.Info().Str("frames", frames).Int("images", len(names)).Str("output", cfg.Movie).Msg("encoding")
			return encoderFor(cfg.Movie, cfg, *log).Encode(cmd.Context(), names, cfg.Movie, cfg.FPS)
		},
	}
	f := cmd.Flags()
	f.StringVar(&frames, "frames", "", "folder with the PNG images")
	f.StringVar(&cfg.Movie, "out", "", "movie file to write (.mp4, .gif...)")
	f.Float64Var(&cfg.FPS, "fps", cfg.FPS, "movie frame rate")
	f.StringVar(&cfg.FFmpeg, "ffmpeg", cfg.FFmpeg, "ffmpeg executable")
	f.StringVar(&cfg.Codec, "codec", cfg.Codec, "ffmpeg video codec")
	f.IntVar(&cfg.CRF, "crf", cfg.CRF, "ffmpeg constant rate factor; 0 uses the codec default")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	return cmd
}
