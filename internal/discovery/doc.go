// Package discovery finds lights on the local network.
//
// A session multicasts one SSDP-style search request to
// 239.255.255.250:1982 and collects the answers devices send back to the
// bound port. Answers are HTTP-like header blocks; each one that carries an
// id, a Location and the state fields becomes a device.Descriptor.
//
// # Discovery Process
//
//  1. Bind the local UDP endpoint and send the probe
//  2. A background listener decodes every datagram and queues descriptors
//  3. Every PollInterval the queue is drained into a set keyed by id
//  4. The session ends when its Policy is satisfied
//
// # Usage Example
//
//	devices, err := discovery.NewSearcher().Search(ctx, discovery.Duration(3*time.Second))
//	if err != nil {
//	    return err
//	}
//	for _, d := range devices {
//	    fmt.Println(d)
//	}
//
// # Policies
//
//   - Duration(d): whatever answered within d, possibly nothing
//   - MinimumCount(n): exactly the first n distinct devices
//   - TargetID(id) / TargetIDs(ids...): until every listed id answered
//
// # Network Requirements
//
// - The network must pass multicast traffic
// - Devices must have LAN control enabled
// - Only one session can bind the default port at a time
//
// # Thread Safety
//
// A Searcher holds no session state. Sessions that bind different ports
// can run concurrently.
package discovery
