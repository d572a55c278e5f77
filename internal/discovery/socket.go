package discovery

import (
	"context"
	"fmt"
	"net"

	"golang.org/x/net/ipv4"
)

// multicastTTL keeps probes on the local segment and its router
const multicastTTL = 2

// PacketConn is the datagram endpoint a session sends and receives on
type PacketConn interface {
	ReadFrom(p []byte) (n int, addr net.Addr, err error)
	WriteTo(p []byte, addr net.Addr) (n int, err error)
	Close() error
}

// ListenFunc opens the endpoint for one session
type ListenFunc func(ctx context.Context, addr string) (PacketConn, error)

// ListenUDP binds an IPv4 UDP socket on addr, ready to send multicast probes
func ListenUDP(ctx context.Context, addr string) (PacketConn, error) {
	var lc net.ListenConfig
	conn, err := lc.ListenPacket(ctx, "udp4", addr)
	if err != nil {
		return nil, err
	}

	packetConn := ipv4.NewPacketConn(conn)
	if err := packetConn.SetMulticastTTL(multicastTTL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set multicast TTL: %w", err)
	}
	if err := packetConn.SetMulticastLoopback(true); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable multicast loopback: %w", err)
	}

	return conn, nil
}
