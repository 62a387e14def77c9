package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alphonsez1/ARSmoothDesk/internal/api"
	"github.com/alphonsez1/ARSmoothDesk/internal/capture"
	"github.com/alphonsez1/ARSmoothDesk/internal/config"
	"github.com/alphonsez1/ARSmoothDesk/internal/logger"
	"github.com/alphonsez1/ARSmoothDesk/internal/output"
	"github.com/alphonsez1/ARSmoothDesk/internal/pump"
	"github.com/alphonsez1/ARSmoothDesk/internal/scale"
)

var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Start mirroring a display",
	Long: `Start the capture pipeline and serve the mirrored display over HTTP.

Frames are captured from the selected display, pointer-composited,
scaled into the configured output resolution and published as an MJPEG
stream. Pipeline status events are available on a WebSocket feed.`,
	Example: `  # Mirror the primary display
  arsmoothdesk mirror

  # Mirror the last display at 60 fps
  arsmoothdesk mirror --display -1 --fps 60

  # High-quality scaling into 1080p
  arsmoothdesk mirror --width 1920 --height 1080 --quality high`,
	RunE: runMirror,
}

func init() {
	rootCmd.AddCommand(mirrorCmd)

	mirrorCmd.Flags().Int("display", 0, "display selector (negative counts from the last display)")
	mirrorCmd.Flags().Int("fps", 0, "target frame rate")
	mirrorCmd.Flags().Int("frame-skip", -1, "publish every (N+1)th cycle")
	mirrorCmd.Flags().Int("width", 0, "output width")
	mirrorCmd.Flags().Int("height", 0, "output height")
	mirrorCmd.Flags().String("quality", "", "scaling quality (fast or high)")

	viper.BindPFlag("capture.display", mirrorCmd.Flags().Lookup("display"))
	viper.BindPFlag("capture.frame_rate", mirrorCmd.Flags().Lookup("fps"))
	viper.BindPFlag("output.width", mirrorCmd.Flags().Lookup("width"))
	viper.BindPFlag("output.height", mirrorCmd.Flags().Lookup("height"))
	viper.BindPFlag("output.quality", mirrorCmd.Flags().Lookup("quality"))
}

func runMirror(cmd *cobra.Command, args []string) error {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to initialize config manager: %w", err)
	}
	cfg := configMgr.Get()
	applyMirrorFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Init(cfg.LogLevel, true)
	log := logger.WithComponent("mirror")

	mjpeg := output.NewMJPEGOutput(output.Config{
		Width:   cfg.Output.Width,
		Height:  cfg.Output.Height,
		FPS:     cfg.Capture.FrameRate,
		Quality: cfg.Output.JPEG,
	})
	if err := mjpeg.Start(); err != nil {
		return fmt.Errorf("failed to start MJPEG output: %w", err)
	}
	defer mjpeg.Stop()

	scaler := scale.NewScaler(cfg.Output.Width, cfg.Output.Height, cfg.Output.Quality)
	captureCfg := cfg.Capture
	pipeline := pump.New(
		pump.Config{
			FrameRate: captureCfg.FrameRate,
			FrameSkip: captureCfg.FrameSkip,
			MinSleep:  time.Duration(captureCfg.MinSleepMs) * time.Millisecond,
		},
		func() (capture.Capturer, error) { return capture.Open(captureCfg) },
		scaler,
		func(frame *scale.OutputFrame) {
			if err := mjpeg.WriteFrame(frame); err != nil {
				log.Debug().Err(err).Msg("Frame write dropped")
			}
		},
	)

	feed := api.NewStatusFeed()
	defer feed.Close()
	go forwardStatus(pipeline.Status(), feed)

	if err := pipeline.Start(); err != nil {
		return err
	}
	defer pipeline.Stop()

	server := api.NewServer(configMgr, mjpeg, pipeline, feed)
	go func() {
		if err := server.Start(cfg.ServerPort); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	log.Info().
		Int("port", cfg.ServerPort).
		Int("display", captureCfg.Display).
		Msgf("Mirroring started, preview at http://localhost:%d", cfg.ServerPort)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("Shutting down")
	return nil
}

// applyMirrorFlags overlays values set on the command line onto the
// persisted configuration.
func applyMirrorFlags(cmd *cobra.Command, cfg *config.Config) {
	if viper.IsSet("server_port") && viper.GetInt("server_port") > 0 {
		cfg.ServerPort = viper.GetInt("server_port")
	}
	if viper.IsSet("log_level") && viper.GetString("log_level") != "" {
		cfg.LogLevel = viper.GetString("log_level")
	}
	if cmd.Flags().Changed("display") {
		cfg.Capture.Display = viper.GetInt("capture.display")
	}
	if cmd.Flags().Changed("fps") {
		cfg.Capture.FrameRate = viper.GetInt("capture.frame_rate")
	}
	if cmd.Flags().Changed("frame-skip") {
		if v, err := cmd.Flags().GetInt("frame-skip"); err == nil && v >= 0 {
			cfg.Capture.FrameSkip = v
		}
	}
	if cmd.Flags().Changed("width") {
		cfg.Output.Width = viper.GetInt("output.width")
	}
	if cmd.Flags().Changed("height") {
		cfg.Output.Height = viper.GetInt("output.height")
	}
	if cmd.Flags().Changed("quality") {
		cfg.Output.Quality = config.ScalingQuality(viper.GetString("output.quality"))
	}
}

// forwardStatus translates pump status events onto the websocket feed.
func forwardStatus(events <-chan pump.Status, feed *api.StatusFeed) {
	for ev := range events {
		out := api.StatusEvent{Backend: ev.Backend}
		switch ev.Kind {
		case pump.EventStarted:
			out.Kind = "started"
		case pump.EventSourceLost:
			out.Kind = "source_lost"
		case pump.EventRecovered:
			out.Kind = "recovered"
		case pump.EventStopped:
			out.Kind = "stopped"
		case pump.EventFatal:
			out.Kind = "fatal"
		}
		if ev.Err != nil {
			out.Error = ev.Err.Error()
		}
		feed.Publish(out)
	}
}
