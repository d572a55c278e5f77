package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sgbasaraner/libyee/internal/device"
	"github.com/sgbasaraner/libyee/internal/devstore"
	"github.com/sgbasaraner/libyee/internal/discovery"
	"github.com/sgbasaraner/libyee/internal/logging"
	"github.com/sgbasaraner/libyee/internal/ui"
)

// Scan flags
var (
	scanTimeout time.Duration
	scanCount   int
	scanIDs     []string
	scanBind    string
)

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(aliasCmd)
	rootCmd.AddCommand(forgetCmd)

	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 0, "Search duration (default from config)")
	scanCmd.Flags().IntVar(&scanCount, "count", 0, "Stop once this many lights answered")
	scanCmd.Flags().StringSliceVar(&scanIDs, "id", nil, "Stop once all of these ids answered")
	scanCmd.Flags().StringVar(&scanBind, "bind", discovery.DefaultListenAddr, "Local UDP address to search from")
	scanCmd.MarkFlagsMutuallyExclusive("count", "id")
}

// scanPolicy picks the termination policy from the scan flags
func scanPolicy(defaultTimeout time.Duration) (discovery.Policy, time.Duration) {
	timeout := scanTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	switch {
	case scanCount > 0:
		return discovery.MinimumCount(scanCount), timeout
	case len(scanIDs) > 0:
		return discovery.TargetIDs(scanIDs...), timeout
	default:
		return discovery.Duration(timeout), timeout
	}
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Search the network for lights",
	Long: `Search for lights with an SSDP multicast probe.

By default the search runs for the configured discovery timeout. With
--count or --id it stops as soon as the condition holds, still bounded
by --timeout. Every light found is cached for later commands.`,
	Example: `  # Search for three seconds
  yee scan

  # Stop as soon as two lights answered
  yee scan --count 2

  # Wait for specific lights
  yee scan --id 0x000000000015243f --id 0x0000000000152440`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	policy, timeout := scanPolicy(s.registry.Preferences.DiscoverDuration())
	s.searcher.ListenAddr = scanBind

	if ui.IsInteractive() {
		fmt.Println(ui.RenderCommandHeader(ui.HeaderConfig{
			Title:   "Discovery",
			Command: cmd.CommandPath(),
			Params: map[string]string{
				"Policy":  policy.String(),
				"Timeout": timeout.String(),
				"Group":   s.searcher.GroupAddr,
			},
		}))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	devices, err := s.search(ctx, policy)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		printFailure("Discovery failed", err)
		return err
	}

	if err := s.remember(devices...); err != nil {
		logging.Warn("Failed to cache announcements", zap.Error(err))
	}

	printDevices(devices, s.nicknames())
	if len(devices) == 0 && ui.IsInteractive() {
		fmt.Println(ui.NewWarningResult("No lights answered", map[string]string{
			"Hint": "Enable LAN Control in the Yeelight app and check the firewall allows UDP 1982",
		}).Render())
	}
	return nil
}

func printDevices(devices []*device.Descriptor, nicknames map[string]string) {
	if ui.IsInteractive() {
		fmt.Println(ui.RenderDeviceList(devices, nicknames))
		return
	}
	fmt.Print(ui.RenderDeviceListPlain(devices, nicknames))
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached lights without searching",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		devices, err := s.store.List()
		if err != nil {
			return err
		}
		printDevices(devices, s.nicknames())
		return nil
	},
}

var aliasCmd = &cobra.Command{
	Use:   "alias ID NICKNAME",
	Short: "Give a light a local nickname",
	Long: `Give a light a nickname that can be used with --device.

Nicknames are stored in the config file and are unique ignoring case. An
empty nickname removes it.`,
	Example: `  yee alias 0x000000000015243f desk
  yee power on --device desk`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		id, _ := s.registry.ResolveDevice(args[0])
		if err := s.registry.SetDeviceNickname(id, args[1]); err != nil {
			return err
		}
		if err := s.registry.Save(); err != nil {
			return err
		}

		fmt.Printf("%s is now %s\n", id, strconv.Quote(args[1]))
		return nil
	},
}

var forgetCmd = &cobra.Command{
	Use:   "forget ID|NICKNAME",
	Short: "Remove a light from the cache and config",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		id, known := s.registry.ResolveDevice(args[0])
		if _, err := s.store.Get(id); errors.Is(err, devstore.ErrNotFound) && !known {
			return fmt.Errorf("%s: %w", args[0], discovery.ErrDeviceNotFound)
		}

		if err := s.store.Remove(id); err != nil {
			return err
		}
		s.registry.RemoveDevice(id)
		if err := s.registry.Save(); err != nil {
			return err
		}

		fmt.Printf("Forgot %s\n", id)
		return nil
	},
}
