package control

import (
	"math"
	"strings"
	"time"

	"github.com/sgbasaraner/libyee/internal/device"
)

// Argument limits enforced before any request is sent
const (
	MinTemperature = 1700
	MaxTemperature = 6500

	MinTransition  = 30 * time.Millisecond
	MaxTransition  = time.Duration(math.MaxInt32) * time.Millisecond
	MinFlowSegment = 50 * time.Millisecond

	MinAutoDelayOffMinutes = 1
)

// ValidateBrightness checks a brightness percentage
func ValidateBrightness(brightness uint8) error {
	if brightness > device.MaxBrightness {
		return newBadRequest("brightness %d out of range 0-%d", brightness, device.MaxBrightness)
	}
	return nil
}

// ValidateTemperature checks a color temperature in Kelvin
func ValidateTemperature(kelvin uint16) error {
	if kelvin < MinTemperature || kelvin > MaxTemperature {
		return newBadRequest("color temperature %dK out of range %d-%d", kelvin, MinTemperature, MaxTemperature)
	}
	return nil
}

// ValidateHSV checks hue and saturation
func ValidateHSV(color device.HSV) error {
	if color.Hue > device.MaxHue {
		return newBadRequest("hue %d out of range 0-%d", color.Hue, device.MaxHue)
	}
	if color.Saturation > device.MaxSaturation {
		return newBadRequest("saturation %d out of range 0-%d", color.Saturation, device.MaxSaturation)
	}
	return nil
}

// ValidateTransition checks a smooth transition duration
func ValidateTransition(d time.Duration) error {
	if d < MinTransition {
		return newBadRequest("transition %v shorter than %v", d, MinTransition)
	}
	if d > MaxTransition {
		return newBadRequest("transition %v does not fit in a 32-bit millisecond count", d)
	}
	return nil
}

// ValidateFlowSegment checks one color flow step
func ValidateFlowSegment(s FlowSegment) error {
	if s.Duration < MinFlowSegment {
		return newBadRequest("flow segment %v shorter than %v", s.Duration, MinFlowSegment)
	}
	if s.Duration > MaxTransition {
		return newBadRequest("flow segment %v does not fit in a 32-bit millisecond count", s.Duration)
	}

	switch s.Kind {
	case FlowColor:
		return ValidateBrightness(s.Brightness)
	case FlowTemperature:
		if err := ValidateTemperature(s.Temperature); err != nil {
			return err
		}
		return ValidateBrightness(s.Brightness)
	case FlowSleep:
		return nil
	default:
		return newBadRequest("unknown flow segment kind %d", int(s.Kind))
	}
}

// ValidateFlow checks a whole color flow
func ValidateFlow(flow ColorFlow) error {
	if len(flow.Segments) == 0 {
		return newBadRequest("color flow has no segments")
	}
	if _, ok := flowActionNames[flow.Action]; !ok {
		return newBadRequest("unknown flow action %d", int(flow.Action))
	}
	for _, s := range flow.Segments {
		if err := ValidateFlowSegment(s); err != nil {
			return err
		}
	}
	return nil
}

// ValidateProps checks a get_prop property list
func ValidateProps(props []string) error {
	if len(props) == 0 {
		return newBadRequest("at least one property is required")
	}
	for _, p := range props {
		if strings.TrimSpace(p) == "" {
			return newBadRequest("property names cannot be empty")
		}
	}
	return nil
}

// ValidateMusicTarget checks the host and port a device should stream to
func ValidateMusicTarget(host string, port int) error {
	if strings.TrimSpace(host) == "" {
		return newBadRequest("music host cannot be empty")
	}
	if port < 1 || port > 65535 {
		return newBadRequest("music port %d out of range 1-65535", port)
	}
	return nil
}

// ValidatePowerMode checks the optional mode sent with set_power
func ValidatePowerMode(mode PowerMode) error {
	if mode < PowerModeDefault || mode > PowerModeNightLight {
		return newBadRequest("unknown power mode %d", int(mode))
	}
	return nil
}

// ValidateAutoDelayOff checks an auto delay off scene
func ValidateAutoDelayOff(brightness uint8, minutes uint16) error {
	if err := ValidateBrightness(brightness); err != nil {
		return err
	}
	if minutes < MinAutoDelayOffMinutes {
		return newBadRequest("auto delay off needs at least %d minute", MinAutoDelayOffMinutes)
	}
	return nil
}
