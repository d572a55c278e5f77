package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sgbasaraner/libyee/internal/device"
	"github.com/sgbasaraner/libyee/internal/logging"
)

const (
	// DefaultListenAddr is the local address probes are sent from.
	// Devices answer with a unicast datagram to this port.
	DefaultListenAddr = "0.0.0.0:34254"

	// DefaultGroupAddr is the multicast group devices listen on
	DefaultGroupAddr = "239.255.255.250:1982"

	// DefaultPollInterval is how often queued announcements are collected
	DefaultPollInterval = 250 * time.Millisecond

	datagramSize = 2048
	backlog      = 64
)

// ErrDeviceNotFound is returned by Find when the target never answers
var ErrDeviceNotFound = errors.New("device not found")

// ProbeMessage is the search request multicast at the start of a session
var ProbeMessage = []byte("M-SEARCH * HTTP/1.1\r\n" +
	"HOST: 239.255.255.250:1982\r\n" +
	"MAN: \"ssdp:discover\"\r\n" +
	"ST: wifi_bulb\r\n")

// Searcher runs discovery sessions
type Searcher struct {
	// ListenAddr is the local UDP address to bind
	ListenAddr string

	// GroupAddr is where the probe is sent
	GroupAddr string

	// PollInterval is the cadence at which announcements are collected
	PollInterval time.Duration

	// Listen opens the session endpoint; ListenUDP when nil
	Listen ListenFunc
}

// NewSearcher creates a searcher with default settings
func NewSearcher() *Searcher {
	return &Searcher{
		ListenAddr:   DefaultListenAddr,
		GroupAddr:    DefaultGroupAddr,
		PollInterval: DefaultPollInterval,
	}
}

// Search sends one probe and collects announcements until the policy is
// satisfied. Devices are returned in first-seen order, one per id.
//
// Only a failure to open the endpoint or send the probe is an error.
// Datagrams that do not describe a device are dropped. If ctx ends first,
// the devices seen so far are returned with ctx.Err().
func (s *Searcher) Search(ctx context.Context, policy Policy) ([]*device.Descriptor, error) {
	session := uuid.NewString()

	listen := s.Listen
	if listen == nil {
		listen = ListenUDP
	}
	pollInterval := s.PollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	group, err := net.ResolveUDPAddr("udp4", s.GroupAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid multicast group %q: %w", s.GroupAddr, err)
	}

	conn, err := listen(ctx, s.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to open discovery socket on %s: %w", s.ListenAddr, err)
	}

	if _, err := conn.WriteTo(ProbeMessage, group); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to send discovery probe: %w", err)
	}

	logging.Debug("Discovery session started",
		zap.String("session", session),
		zap.Stringer("policy", policy),
		zap.String("group", s.GroupAddr),
	)

	// The listener lives exactly as long as this call.
	listenCtx, cancel := context.WithCancel(ctx)
	announcements := make(chan *device.Descriptor, backlog)
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		receive(listenCtx, session, conn, announcements)
	}()

	defer func() {
		cancel()
		conn.Close()
		<-stopped
	}()

	found := newCollection()
	start := time.Now()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Keep what arrived since the last tick.
			found.drain(announcements, policy, start)
			logging.Debug("Discovery session cancelled",
				zap.String("session", session),
				zap.Int("found", found.len()),
			)
			return found.list(), ctx.Err()

		case <-ticker.C:
			if found.drain(announcements, policy, start) || policy.Satisfied(found.list(), time.Since(start)) {
				logging.Debug("Discovery session finished",
					zap.String("session", session),
					zap.Int("found", found.len()),
					zap.Duration("elapsed", time.Since(start)),
				)
				return found.list(), nil
			}
		}
	}
}

// receive publishes every recognized announcement until the session ends
func receive(ctx context.Context, session string, conn PacketConn, out chan<- *device.Descriptor) {
	buf := make([]byte, datagramSize)

	for {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			logging.Warn("Discovery receive failed",
				zap.String("session", session),
				zap.Error(err),
			)
			return
		}

		sender := ""
		if from != nil {
			sender = from.String()
		}

		d, ok := device.ParseAnnouncement(buf[:n])
		if !ok {
			logging.LogAnnouncement(session, sender, "", false)
			continue
		}
		logging.LogAnnouncement(session, sender, d.ID, true)

		select {
		case out <- d:
		case <-ctx.Done():
			return
		}
	}
}

// collection is the deduplicated set of a session, in first-seen order
type collection struct {
	seen    map[string]struct{}
	devices []*device.Descriptor
}

func newCollection() *collection {
	return &collection{seen: make(map[string]struct{})}
}

func (c *collection) add(d *device.Descriptor) bool {
	if _, ok := c.seen[d.ID]; ok {
		return false
	}
	c.seen[d.ID] = struct{}{}
	c.devices = append(c.devices, d)
	return true
}

func (c *collection) len() int {
	return len(c.devices)
}

func (c *collection) list() []*device.Descriptor {
	out := make([]*device.Descriptor, len(c.devices))
	copy(out, c.devices)
	return out
}

// drain moves every queued announcement into the set. It reports true as
// soon as a new device satisfies the policy, leaving the rest queued.
func (c *collection) drain(in <-chan *device.Descriptor, policy Policy, start time.Time) bool {
	for {
		select {
		case d := <-in:
			if c.add(d) && policy.Satisfied(c.list(), time.Since(start)) {
				return true
			}
		default:
			return false
		}
	}
}

// Find runs a session that stops as soon as the device with id answers.
// ErrDeviceNotFound is returned when it stays silent for timeout.
func (s *Searcher) Find(ctx context.Context, id string, timeout time.Duration) (*device.Descriptor, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	found, err := s.Search(ctx, TargetID(id))
	for _, d := range found {
		if d.ID == id {
			return d, nil
		}
	}
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %s did not answer within %v", ErrDeviceNotFound, id, timeout)
}
