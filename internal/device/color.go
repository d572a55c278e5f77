package device

import "fmt"

// Power is the on/off state reported by a light
type Power int

const (
	PowerOff Power = iota
	PowerOn
)

var powerNames = map[Power]string{
	PowerOff: "off",
	PowerOn:  "on",
}

func (p Power) String() string {
	if name, ok := powerNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Power(%d)", int(p))
}

// ParsePower parses the wire form ("on" / "off")
func ParsePower(s string) (Power, bool) {
	for p, name := range powerNames {
		if name == s {
			return p, true
		}
	}
	return PowerOff, false
}

// RGB is a 24-bit color
type RGB struct {
	R, G, B uint8
}

// RGBFromInt unpacks the 0xRRGGBB integer used on the wire
func RGBFromInt(v uint32) RGB {
	return RGB{
		R: uint8((v >> 16) & 0xFF),
		G: uint8((v >> 8) & 0xFF),
		B: uint8(v & 0xFF),
	}
}

// Int packs the color as r*65536 + g*256 + b
func (c RGB) Int() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

const (
	// MaxHue is the highest accepted hue value
	MaxHue = 359
	// MaxSaturation is the highest accepted saturation value
	MaxSaturation = 100
)

// HSV is a hue (0-359) / saturation (0-100) pair
type HSV struct {
	Hue        uint16
	Saturation uint8
}

// Valid reports whether both components are in range
func (h HSV) Valid() bool {
	return h.Hue <= MaxHue && h.Saturation <= MaxSaturation
}

func (h HSV) String() string {
	return fmt.Sprintf("hue=%d sat=%d", h.Hue, h.Saturation)
}

// ColorMode is the active color mode of a light. It is one of
// RGBMode, TemperatureMode or HSVMode.
type ColorMode interface {
	// Code is the numeric color_mode value from the announcement
	Code() int
	String() string

	isColorMode()
}

// Color mode codes as announced by the device
const (
	ColorModeRGB         = 1
	ColorModeTemperature = 2
	ColorModeHSV         = 3
)

// RGBMode means the light is showing a fixed RGB color
type RGBMode struct {
	Color RGB
}

func (RGBMode) Code() int        { return ColorModeRGB }
func (m RGBMode) String() string { return "rgb " + m.Color.String() }
func (RGBMode) isColorMode()     {}

// TemperatureMode means the light is in white mode at a color temperature
type TemperatureMode struct {
	Kelvin uint32
}

func (TemperatureMode) Code() int        { return ColorModeTemperature }
func (m TemperatureMode) String() string { return fmt.Sprintf("ct %dK", m.Kelvin) }
func (TemperatureMode) isColorMode()     {}

// HSVMode means the light is showing a hue/saturation color
type HSVMode struct {
	Color HSV
}

func (HSVMode) Code() int        { return ColorModeHSV }
func (m HSVMode) String() string { return "hsv " + m.Color.String() }
func (HSVMode) isColorMode()     {}
