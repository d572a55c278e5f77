package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sgbasaraner/libyee/internal/config"
	"github.com/sgbasaraner/libyee/internal/control"
	"github.com/sgbasaraner/libyee/internal/device"
	"github.com/sgbasaraner/libyee/internal/devstore"
	"github.com/sgbasaraner/libyee/internal/discovery"
	"github.com/sgbasaraner/libyee/internal/logging"
	"github.com/sgbasaraner/libyee/internal/ui"
)

// maxParallel bounds how many lights are driven at once
const maxParallel = 8

// session holds what every light command needs: the registry, the
// announcement cache and a searcher configured from preferences.
type session struct {
	registry *config.Registry
	store    *devstore.Store
	searcher *discovery.Searcher

	mu sync.Mutex // guards registry and its file
}

func openSession() (*session, error) {
	registry, err := config.LoadRegistry()
	if err != nil {
		return nil, err
	}

	storePath, err := registry.StorePath()
	if err != nil {
		return nil, fmt.Errorf("failed to locate device store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(storePath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", filepath.Dir(storePath), err)
	}

	store, err := devstore.Open(storePath)
	if err != nil {
		return nil, err
	}

	searcher := discovery.NewSearcher()
	if interval := registry.Preferences.PollInterval(); interval > 0 {
		searcher.PollInterval = interval
	}

	return &session{registry: registry, store: store, searcher: searcher}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

// remember caches announcements and records where each light was seen
func (s *session) remember(devices ...*device.Descriptor) error {
	for _, d := range devices {
		if err := s.store.Put(d); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range devices {
		s.registry.UpdateDeviceLastSeen(d.ID, d.Address, d.Model)
	}
	return s.registry.Save()
}

// touch updates the last seen time after a successful command
func (s *session) touch(d *device.Descriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.registry.UpdateDeviceLastSeen(d.ID, d.Address, d.Model)
	if err := s.registry.Save(); err != nil {
		logging.Warn("Failed to save config", zap.Error(err))
	}
}

// nicknames maps device ids to their aliases
func (s *session) nicknames() map[string]string {
	names := make(map[string]string, len(s.registry.Devices))
	for id, d := range s.registry.Devices {
		if d != nil && d.Nickname != "" {
			names[id] = d.Nickname
		}
	}
	return names
}

// resolve turns a reference into a descriptor: nickname or id through the
// registry, then the cache, then a discovery session targeting the id.
func (s *session) resolve(ctx context.Context, ref string) (*device.Descriptor, error) {
	id, known := s.registry.ResolveDevice(ref)

	d, err := s.store.Get(id)
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, devstore.ErrNotFound) {
		return nil, err
	}

	if !known && isAddress(ref) {
		// Announcements are the only way to learn a light's id, so an
		// address that was never announced cannot be searched for.
		if d, ok := s.byAddress(ref); ok {
			return d, nil
		}
		return nil, fmt.Errorf("%w: no light announced from %s. Run 'yee scan' first", discovery.ErrDeviceNotFound, ref)
	}

	logging.Info("Light not cached, searching", zap.String("id", id))
	err = ui.Spin(ctx, "Searching for "+ref, func(ctx context.Context) error {
		var err error
		d, err = s.searcher.Find(ctx, id, s.registry.Preferences.DiscoverDuration())
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := s.remember(d); err != nil {
		logging.Warn("Failed to cache announcement", zap.String("id", d.ID), zap.Error(err))
	}
	return d, nil
}

func isAddress(ref string) bool {
	host, port, err := net.SplitHostPort(ref)
	return err == nil && host != "" && port != ""
}

func (s *session) byAddress(address string) (*device.Descriptor, bool) {
	devices, err := s.store.List()
	if err != nil {
		return nil, false
	}
	for _, d := range devices {
		if d.Address == address {
			return d, true
		}
	}
	return nil, false
}

// search runs a discovery session behind a spinner
func (s *session) search(ctx context.Context, policy discovery.Policy) ([]*device.Descriptor, error) {
	var devices []*device.Descriptor
	err := ui.Spin(ctx, "Searching for lights", func(ctx context.Context) error {
		var err error
		devices, err = s.searcher.Search(ctx, policy)
		return err
	})
	return devices, err
}

// targets resolves the --device flags. Without any, a short discovery
// session runs and a single answering light is used.
func (s *session) targets(ctx context.Context) ([]*device.Descriptor, error) {
	if len(deviceRefs) == 0 {
		return s.discoverSingle(ctx)
	}

	seen := make(map[string]bool, len(deviceRefs))
	var devices []*device.Descriptor
	for _, ref := range deviceRefs {
		d, err := s.resolve(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ref, err)
		}
		if !seen[d.ID] {
			seen[d.ID] = true
			devices = append(devices, d)
		}
	}
	return devices, nil
}

func (s *session) discoverSingle(ctx context.Context) ([]*device.Descriptor, error) {
	devices, err := s.search(ctx, discovery.Duration(s.registry.Preferences.DiscoverDuration()))
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}
	if err := s.remember(devices...); err != nil {
		logging.Warn("Failed to cache announcements", zap.Error(err))
	}

	switch len(devices) {
	case 0:
		return nil, fmt.Errorf("%w: no lights answered. Use --device to name one", discovery.ErrDeviceNotFound)
	case 1:
		return devices, nil
	}

	ids := make([]string, len(devices))
	for i, d := range devices {
		ids[i] = d.ID
	}
	sort.Strings(ids)
	return nil, fmt.Errorf("multiple lights found (%s). Use --device to pick one", strings.Join(ids, ", "))
}

func (s *session) readTimeout() time.Duration {
	if readTimeout > 0 {
		return readTimeout
	}
	return s.registry.Preferences.ReadTimeout()
}

// dial connects to a light, retrying connection failures with backoff
func (s *session) dial(ctx context.Context, d *device.Descriptor) (*control.Conn, error) {
	var conn *control.Conn

	operation := func() error {
		c, err := control.Dial(ctx, d, control.WithReadTimeout(s.readTimeout()))
		if err != nil {
			if !control.IsRetryable(err) {
				return backoff.Permanent(err)
			}
			logging.Debug("Dial failed, retrying", zap.String("address", d.Address), zap.Error(err))
			return err
		}
		conn = c
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxElapsedTime = 10 * time.Second

	retries := s.registry.Preferences.DialRetries
	if retries < 0 {
		retries = 0
	}
	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(retries)), ctx)

	if err := backoff.Retry(operation, b); err != nil {
		return nil, err
	}
	return conn, nil
}

// lightAction runs one command against an open connection and returns the
// details to show on success
type lightAction func(conn *control.Conn) (map[string]string, error)

type outcome struct {
	device  *device.Descriptor
	details map[string]string
	err     error
}

// runOnLights resolves the targets and runs action on each of them
// concurrently. Every light is attempted; the command fails if any did.
func runOnLights(cmd *cobra.Command, title string, action lightAction) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	devices, err := s.targets(ctx)
	if err != nil {
		printFailure(title, err)
		return err
	}

	outcomes := make([]outcome, len(devices))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)

	for i, d := range devices {
		g.Go(func() error {
			outcomes[i] = outcome{device: d}

			conn, err := s.dial(gctx, d)
			if err != nil {
				outcomes[i].err = err
				return nil
			}
			defer conn.Close()

			details, err := action(conn)
			outcomes[i].details, outcomes[i].err = details, err
			if err == nil {
				s.touch(d)
			}
			return nil
		})
	}
	_ = g.Wait()

	return report(title, outcomes, s.nicknames())
}

func label(d *device.Descriptor, nicknames map[string]string) string {
	if name := nicknames[d.ID]; name != "" {
		return fmt.Sprintf("%s (%s)", name, d.ID)
	}
	return d.ID
}

func report(title string, outcomes []outcome, nicknames map[string]string) error {
	failed := 0
	for _, o := range outcomes {
		name := label(o.device, nicknames)

		if o.err != nil {
			failed++
			printFailure(title+" on "+name, o.err)
			continue
		}

		if !ui.IsInteractive() {
			fmt.Println(plainLine(name, o.details))
			continue
		}
		result := ui.NewSuccessResult(title, o.details)
		result.AddDetail("Light", name)
		fmt.Println(result.Render())
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d lights failed", failed, len(outcomes))
	}
	return nil
}

func printFailure(title string, err error) {
	if !ui.IsInteractive() {
		fmt.Fprintf(os.Stderr, "%s: %v\n", title, err)
		return
	}
	fmt.Println(ui.NewFailureResult(title, err, ui.TroubleshootingFor(err)).Render())
}

// plainLine renders "name ok key=value ..." with keys sorted
func plainLine(name string, details map[string]string) string {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := []string{name, "ok"}
	for _, k := range keys {
		parts = append(parts, k+"="+details[k])
	}
	return strings.Join(parts, " ")
}
