package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "arsmoothdesk",
		Short: "ARSmoothDesk - Low-latency desktop mirroring pipeline",
		Long: `ARSmoothDesk mirrors a selected display into a fixed-size output
surface at a steady frame rate, with hardware frame duplication where
the platform provides it and a block-copy fallback everywhere else.

Features:
  • Hardware desktop duplication with automatic fallback
  • Pointer shape compositing (color, masked, monochrome)
  • Aspect-preserving letterboxed scaling
  • MJPEG preview stream over HTTP
  • Live status feed over WebSocket
  • Persistent configuration`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/arsmoothdesk/config.yaml)")
	rootCmd.PersistentFlags().Int("port", 0, "server port (default is 8080)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	// Bind flags to viper
	viper.BindPFlag("server_port", rootCmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}
