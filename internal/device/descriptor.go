package device

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/sgbasaraner/libyee/internal/protocol"
)

// Header keys read from an announcement
const (
	HeaderID        = "id"
	HeaderLocation  = "Location"
	HeaderModel     = "model"
	HeaderFirmware  = "fw_ver"
	HeaderSupport   = "support"
	HeaderPower     = "power"
	HeaderBright    = "bright"
	HeaderColorMode = "color_mode"
	HeaderCt        = "ct"
	HeaderRGB       = "rgb"
	HeaderHue       = "hue"
	HeaderSat       = "sat"
	HeaderName      = "name"
)

// MaxBrightness is the upper bound of the brightness scale
const MaxBrightness = 100

// Descriptor is the identity, address and attribute snapshot of one light.
// A Descriptor is never modified after Parse returns it; a newer
// announcement yields a new Descriptor.
type Descriptor struct {
	// ID is the device identity (e.g., "0x000000000015243f"), stable across sessions
	ID string

	// Model is the product model (e.g., "color")
	Model string

	// FirmwareVersion is the fw_ver field as announced
	FirmwareVersion string

	// Support is the capability set. Calls outside it are rejected locally.
	Support MethodSet

	Power      Power
	Brightness uint8
	ColorMode  ColorMode

	// Name is the user-assigned device name, empty if never set
	Name string

	// Address is the control endpoint as host:port (e.g., "192.168.1.239:55443")
	Address string

	// Headers is a copy of the raw header block the descriptor was built from
	Headers map[string]string

	// DiscoveredAt is when the descriptor was parsed
	DiscoveredAt time.Time
}

// String returns a human-readable representation of the device
func (d *Descriptor) String() string {
	return fmt.Sprintf("%s %s (%s) at %s", d.Model, d.ID, d.Name, d.Address)
}

// Supports reports whether the device declared support for m
func (d *Descriptor) Supports(m protocol.Method) bool {
	return d.Support.Has(m)
}

// Header returns a raw header value, or empty string if absent
func (d *Descriptor) Header(key string) string {
	if d.Headers == nil {
		return ""
	}
	return d.Headers[key]
}

// Parse builds a Descriptor from a flat header map.
//
// It returns false when a required field is missing or malformed. That is
// not an error: the map simply is not (yet) a usable announcement.
func Parse(headers map[string]string) (*Descriptor, bool) {
	id := headers[HeaderID]
	if id == "" {
		return nil, false
	}

	address, ok := parseLocation(headers[HeaderLocation])
	if !ok {
		return nil, false
	}

	model, ok := headers[HeaderModel]
	if !ok {
		return nil, false
	}

	firmware, ok := headers[HeaderFirmware]
	if !ok {
		return nil, false
	}

	support, ok := headers[HeaderSupport]
	if !ok {
		return nil, false
	}

	power, ok := ParsePower(headers[HeaderPower])
	if !ok {
		return nil, false
	}

	bright, err := strconv.ParseUint(headers[HeaderBright], 10, 8)
	if err != nil || bright > MaxBrightness {
		return nil, false
	}

	mode, ok := parseColorMode(headers)
	if !ok {
		return nil, false
	}

	raw := make(map[string]string, len(headers))
	for k, v := range headers {
		raw[k] = v
	}

	return &Descriptor{
		ID:              id,
		Model:           model,
		FirmwareVersion: firmware,
		Support:         ParseSupport(support),
		Power:           power,
		Brightness:      uint8(bright),
		ColorMode:       mode,
		Name:            headers[HeaderName],
		Address:         address,
		Headers:         raw,
		DiscoveredAt:    time.Now(),
	}, true
}

// parseLocation keeps only the host:port part of scheme://host:port
func parseLocation(location string) (string, bool) {
	_, rest, found := strings.Cut(location, "//")
	if !found {
		return "", false
	}

	hostport, _, _ := strings.Cut(rest, "/")
	host, port, err := net.SplitHostPort(hostport)
	if err != nil || host == "" || port == "" {
		return "", false
	}

	return hostport, true
}

func parseColorMode(headers map[string]string) (ColorMode, bool) {
	code, err := strconv.Atoi(headers[HeaderColorMode])
	if err != nil {
		return nil, false
	}

	switch code {
	case ColorModeRGB:
		v, err := strconv.ParseUint(headers[HeaderRGB], 10, 32)
		if err != nil || v > 0xFFFFFF {
			return nil, false
		}
		return RGBMode{Color: RGBFromInt(uint32(v))}, true

	case ColorModeTemperature:
		v, err := strconv.ParseUint(headers[HeaderCt], 10, 32)
		if err != nil {
			return nil, false
		}
		return TemperatureMode{Kelvin: uint32(v)}, true

	case ColorModeHSV:
		hue, err := strconv.ParseUint(headers[HeaderHue], 10, 16)
		if err != nil {
			return nil, false
		}
		sat, err := strconv.ParseUint(headers[HeaderSat], 10, 8)
		if err != nil {
			return nil, false
		}
		color := HSV{Hue: uint16(hue), Saturation: uint8(sat)}
		if !color.Valid() {
			return nil, false
		}
		return HSVMode{Color: color}, true

	default:
		return nil, false
	}
}
