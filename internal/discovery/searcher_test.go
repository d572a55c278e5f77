package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sgbasaraner/libyee/internal/device"
)

func announcement(id, location string) string {
	msg := "HTTP/1.1 200 OK\r\n" +
		"Cache-Control: max-age=3600\r\n" +
		"Date: \r\n" +
		"Ext: \r\n"
	if location != "" {
		msg += "Location: " + location + "\r\n"
	}
	return msg +
		"Server: POSIX UPnP/1.0 YGLC/1\r\n" +
		"id: " + id + "\r\n" +
		"model: color\r\n" +
		"fw_ver: 18\r\n" +
		"support: get_prop set_default set_power toggle\r\n" +
		"power: on\r\n" +
		"bright: 100\r\n" +
		"color_mode: 2\r\n" +
		"ct: 4000\r\n" +
		"rgb: 16711680\r\n" +
		"hue: 100\r\n" +
		"sat: 35\r\n" +
		"name: my_bulb\r\n"
}

var deviceAddr = &net.UDPAddr{IP: net.IPv4(192, 168, 1, 239), Port: 1982}

// fakePacketConn hands out queued datagrams and blocks until closed
type fakePacketConn struct {
	datagrams chan string
	closed    chan struct{}
	closeOnce sync.Once

	mu       sync.Mutex
	writes   []string
	writeTo  net.Addr
	writeErr error
}

func newFakePacketConn(datagrams ...string) *fakePacketConn {
	f := &fakePacketConn{
		datagrams: make(chan string, len(datagrams)+16),
		closed:    make(chan struct{}),
	}
	for _, d := range datagrams {
		f.datagrams <- d
	}
	return f
}

func (f *fakePacketConn) ReadFrom(p []byte) (int, net.Addr, error) {
	select {
	case d := <-f.datagrams:
		return copy(p, d), deviceAddr, nil
	case <-f.closed:
		return 0, nil, net.ErrClosed
	}
}

func (f *fakePacketConn) WriteTo(p []byte, addr net.Addr) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.writes = append(f.writes, string(p))
	f.writeTo = addr
	return len(p), nil
}

func (f *fakePacketConn) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

func (f *fakePacketConn) isClosed() bool {
	select {
	case <-f.closed:
		return true
	default:
		return false
	}
}

func fakeSearcher(conn *fakePacketConn) *Searcher {
	s := NewSearcher()
	s.PollInterval = 10 * time.Millisecond
	s.Listen = func(context.Context, string) (PacketConn, error) {
		return conn, nil
	}
	return s
}

func ids(devices []*device.Descriptor) []string {
	out := make([]string, len(devices))
	for i, d := range devices {
		out[i] = d.ID
	}
	return out
}

func TestSearch_SendsProbe(t *testing.T) {
	conn := newFakePacketConn()

	_, err := fakeSearcher(conn).Search(context.Background(), Duration(0))
	require.NoError(t, err)

	require.Equal(t, []string{
		"M-SEARCH * HTTP/1.1\r\nHOST: 239.255.255.250:1982\r\nMAN: \"ssdp:discover\"\r\nST: wifi_bulb\r\n",
	}, conn.writes)
	require.Equal(t, "239.255.255.250:1982", conn.writeTo.String())
}

func TestSearch_DeduplicatesByID(t *testing.T) {
	conn := newFakePacketConn(
		announcement("0x01", "yeelight://192.168.1.239:55443"),
		announcement("0x01", "yeelight://192.168.1.239:55443"),
		announcement("0x02", "yeelight://192.168.1.240:55443"),
		announcement("0x01", "yeelight://192.168.1.99:55443"),
	)

	found, err := fakeSearcher(conn).Search(context.Background(), Duration(100*time.Millisecond))
	require.NoError(t, err)
	require.Equal(t, []string{"0x01", "0x02"}, ids(found))
	require.Equal(t, "192.168.1.239:55443", found[0].Address, "first announcement wins")
}

func TestSearch_DurationWithNoDevices(t *testing.T) {
	conn := newFakePacketConn()
	s := fakeSearcher(conn)

	start := time.Now()
	found, err := s.Search(context.Background(), Duration(100*time.Millisecond))
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Empty(t, found)
	require.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	require.Less(t, elapsed, time.Second)
}

func TestSearch_MinimumCountReturnsExactlyN(t *testing.T) {
	conn := newFakePacketConn(
		announcement("0x01", "yeelight://10.0.0.1:55443"),
		announcement("0x02", "yeelight://10.0.0.2:55443"),
		announcement("0x03", "yeelight://10.0.0.3:55443"),
	)

	// Give the listener time to queue all three before the first poll.
	s := fakeSearcher(conn)
	s.PollInterval = 50 * time.Millisecond

	found, err := s.Search(context.Background(), MinimumCount(2))
	require.NoError(t, err)
	require.Equal(t, []string{"0x01", "0x02"}, ids(found))
}

func TestSearch_MinimumCountWaitsForLateDevice(t *testing.T) {
	conn := newFakePacketConn(announcement("0x01", "yeelight://10.0.0.1:55443"))

	go func() {
		time.Sleep(60 * time.Millisecond)
		conn.datagrams <- announcement("0x02", "yeelight://10.0.0.2:55443")
	}()

	found, err := fakeSearcher(conn).Search(context.Background(), MinimumCount(2))
	require.NoError(t, err)
	require.Len(t, found, 2)
}

func TestSearch_TargetIDs(t *testing.T) {
	conn := newFakePacketConn(
		announcement("0x01", "yeelight://10.0.0.1:55443"),
		announcement("0x02", "yeelight://10.0.0.2:55443"),
		announcement("0x03", "yeelight://10.0.0.3:55443"),
	)

	found, err := fakeSearcher(conn).Search(context.Background(), TargetIDs("0x03", "0x01"))
	require.NoError(t, err)
	require.Contains(t, ids(found), "0x01")
	require.Contains(t, ids(found), "0x03")
}

func TestSearch_IgnoresUnrecognizedDatagrams(t *testing.T) {
	conn := newFakePacketConn(
		announcement("0x01", ""),
		"NOTIFY * HTTP/1.1\r\nHOST: 239.255.255.250:1982\r\n",
		"\x00\x01\x02 binary noise",
	)

	found, err := fakeSearcher(conn).Search(context.Background(), Duration(80*time.Millisecond))
	require.NoError(t, err)
	require.Empty(t, found)
}

func TestSearch_ProbeSendFailure(t *testing.T) {
	conn := newFakePacketConn(announcement("0x01", "yeelight://10.0.0.1:55443"))
	conn.writeErr = errors.New("network is unreachable")

	found, err := fakeSearcher(conn).Search(context.Background(), MinimumCount(1))
	require.Error(t, err)
	require.Nil(t, found)
	require.True(t, conn.isClosed())
}

func TestSearch_ListenFailure(t *testing.T) {
	s := NewSearcher()
	s.Listen = func(context.Context, string) (PacketConn, error) {
		return nil, errors.New("address already in use")
	}

	found, err := s.Search(context.Background(), MinimumCount(1))
	require.Error(t, err)
	require.Nil(t, found)
}

func TestSearch_ContextCancelled(t *testing.T) {
	conn := newFakePacketConn(announcement("0x01", "yeelight://10.0.0.1:55443"))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	found, err := fakeSearcher(conn).Search(ctx, MinimumCount(5))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, []string{"0x01"}, ids(found))
}

func TestSearch_ListenerScopedToSession(t *testing.T) {
	conn := newFakePacketConn()

	_, err := fakeSearcher(conn).Search(context.Background(), Duration(20*time.Millisecond))
	require.NoError(t, err)
	require.True(t, conn.isClosed(), "endpoint must be closed when Search returns")
}

func TestFind_ReturnsTarget(t *testing.T) {
	conn := newFakePacketConn(
		announcement("0x01", "yeelight://10.0.0.1:55443"),
		announcement("0x02", "yeelight://10.0.0.2:55443"),
	)

	d, err := fakeSearcher(conn).Find(context.Background(), "0x02", time.Second)
	require.NoError(t, err)
	require.Equal(t, "10.0.0.2:55443", d.Address)
}

func TestFind_NotFound(t *testing.T) {
	conn := newFakePacketConn(announcement("0x01", "yeelight://10.0.0.1:55443"))

	d, err := fakeSearcher(conn).Find(context.Background(), "0x99", 80*time.Millisecond)
	require.Nil(t, d)
	require.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestFind_TargetAnsweringBetweenTicks(t *testing.T) {
	conn := newFakePacketConn()
	s := fakeSearcher(conn)
	s.PollInterval = 200 * time.Millisecond

	go func() {
		time.Sleep(220 * time.Millisecond)
		conn.datagrams <- announcement("0x07", "yeelight://10.0.0.7:55443")
	}()

	d, err := s.Find(context.Background(), "0x07", 300*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, "0x07", d.ID)
}

func TestSearch_CancelKeepsQueuedAnnouncements(t *testing.T) {
	conn := newFakePacketConn()
	s := fakeSearcher(conn)
	s.PollInterval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		conn.datagrams <- announcement("0x01", "yeelight://10.0.0.1:55443")
		conn.datagrams <- announcement("0x02", "yeelight://10.0.0.2:55443")
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	found, err := s.Search(ctx, MinimumCount(5))
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, []string{"0x01", "0x02"}, ids(found))
}

func TestSearch_UDPLoopback(t *testing.T) {
	responder, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer responder.Close()

	go func() {
		buf := make([]byte, 1024)
		n, from, err := responder.ReadFrom(buf)
		if err != nil || string(buf[:n]) != string(ProbeMessage) {
			return
		}
		for i := 1; i <= 2; i++ {
			msg := announcement(fmt.Sprintf("0x%02d", i), fmt.Sprintf("yeelight://127.0.0.1:%d", 55440+i))
			_, _ = responder.WriteTo([]byte(msg), from)
		}
	}()

	s := &Searcher{
		ListenAddr:   "127.0.0.1:0",
		GroupAddr:    responder.LocalAddr().String(),
		PollInterval: 20 * time.Millisecond,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	found, err := s.Search(ctx, MinimumCount(2))
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"0x01", "0x02"}, ids(found))
}
