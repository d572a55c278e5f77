// Package control sends commands to a light over its TCP control channel.
//
// A Conn correlates each request with exactly one response. Calls are
// serialized: the write and the read of one call happen back to back while
// holding the connection's lock, so a response can never be delivered to
// the wrong caller. Each request gets a fresh 16-bit id from the IDSource
// and the response must echo it.
//
// Usage:
//
//	conn, err := control.Dial(ctx, descriptor, control.WithReadTimeout(3*time.Second))
//	if err != nil {
//		return err
//	}
//	defer conn.Close()
//
//	if _, err := conn.SetBright(40, control.Smooth(500*time.Millisecond)); err != nil {
//		if control.IsUnsupportedMethod(err) {
//			// the device does not advertise set_bright
//		}
//		return err
//	}
//
// Arguments are validated before anything is written. A method the device
// did not list in its support header is refused without touching the wire.
// Nothing is retried here; callers decide with IsRetryable.
//
// Verify reads properties back after a change, retrying reads until the
// light reports the expected values:
//
//	result := conn.Verify(control.ExpectedProps(control.MainLight, map[string]string{"bright": "40"}), nil)
//
// Unsolicited notifications pushed by the device while a call is pending
// are not parsed specially. They surface as parse errors.
package control
