// Package device models a discovered light.
//
// A Descriptor is built from the header block of a discovery announcement:
//
//	HTTP/1.1 200 OK
//	Location: yeelight://192.168.1.239:55443
//	id: 0x000000000015243f
//	model: color
//	fw_ver: 18
//	support: get_prop set_default set_power toggle
//	power: on
//	bright: 100
//	color_mode: 2
//	ct: 4000
//
// Parse needs the identity, the Location header and the attribute fields
// that make up the state snapshot. Anything less yields no descriptor; the
// caller treats that as an unrecognized announcement, not a failure.
//
// The id is the identity key. Two descriptors with the same id describe the
// same device even if their other fields differ.
package device
