// Yee controls Yeelight-compatible lights on the local network.
//
// It discovers lights over SSDP multicast, caches what it finds, and sends
// control commands over each light's JSON-over-TCP LAN control port.
// Lights are addressed by id, by a nickname set with 'yee alias', or by
// their control address.
//
// Usage:
//
//	yee [command] [flags]
//
// See 'yee --help' for available commands.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sgbasaraner/libyee/internal/config"
	"github.com/sgbasaraner/libyee/internal/logging"
	"github.com/sgbasaraner/libyee/internal/ui"
	"github.com/sgbasaraner/libyee/internal/version"
)

func main() {
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	deviceRefs  []string
	smoothMs    int
	background  bool
	readTimeout time.Duration
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "yee",
	Short: "Yeelight LAN control utility",
	Long: `Discover and control Yeelight-compatible lights on the local network.

LAN Control must be enabled for each light in the Yeelight app. Lights
found by 'yee scan' are cached, so later commands connect directly
without searching again.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logLevel)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringArrayVarP(&deviceRefs, "device", "d", nil, "Light id, nickname or address (repeatable)")
	rootCmd.PersistentFlags().IntVar(&smoothMs, "smooth", 0, "Smooth transition duration in milliseconds (0 for sudden)")
	rootCmd.PersistentFlags().BoolVar(&background, "bg", false, "Target the background light")
	rootCmd.PersistentFlags().DurationVar(&readTimeout, "read-timeout", 0, "Response timeout per call (default from config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides YEE_LOG_LEVEL")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if !ui.IsInteractive() {
			fmt.Printf("yee %s\n", version.Full())
			return
		}
		fmt.Println(ui.NewSuccessResult("yee "+version.Version, version.Details()).Render())
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.CreateDefaultConfig()
		if err != nil {
			return err
		}
		fmt.Printf("Created %s\n", path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}
