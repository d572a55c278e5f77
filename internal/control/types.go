package control

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sgbasaraner/libyee/internal/device"
	"github.com/sgbasaraner/libyee/internal/protocol"
)

// suddenDuration is the duration sent alongside the "sudden" effect.
// Devices ignore it but require the field.
const suddenDuration = 50

// TransitionMode selects how a state change is rendered
type TransitionMode struct {
	smooth   bool
	duration time.Duration
}

// Sudden applies a change immediately
var Sudden = TransitionMode{}

// Smooth fades to the new state over d
func Smooth(d time.Duration) TransitionMode {
	return TransitionMode{smooth: true, duration: d}
}

// IsSmooth reports whether the transition fades
func (t TransitionMode) IsSmooth() bool {
	return t.smooth
}

// Duration returns the fade time (zero for Sudden)
func (t TransitionMode) Duration() time.Duration {
	return t.duration
}

func (t TransitionMode) String() string {
	if !t.smooth {
		return "sudden"
	}
	return fmt.Sprintf("smooth %v", t.duration)
}

func (t TransitionMode) args() ([]protocol.Arg, error) {
	if !t.smooth {
		return []protocol.Arg{protocol.StringArg("sudden"), protocol.IntArg(suddenDuration)}, nil
	}
	if err := ValidateTransition(t.duration); err != nil {
		return nil, err
	}
	return []protocol.Arg{protocol.StringArg("smooth"), protocol.IntArg(int(t.duration.Milliseconds()))}, nil
}

// PowerMode is the optional lighting mode selected when switching on
type PowerMode int

const (
	PowerModeDefault PowerMode = iota // not sent
	PowerModeTemperature
	PowerModeRGB
	PowerModeHSV
	PowerModeColorFlow
	PowerModeNightLight
)

// FlowAction is what a device does once a color flow ends
type FlowAction int

const (
	FlowRecover FlowAction = iota // return to the state before the flow
	FlowStay                      // keep the last segment's state
	FlowTurnOff
)

var flowActionNames = map[FlowAction]string{
	FlowRecover: "recover",
	FlowStay:    "stay",
	FlowTurnOff: "off",
}

func (a FlowAction) String() string {
	if name, ok := flowActionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("FlowAction(%d)", int(a))
}

// ParseFlowAction parses recover, stay or off
func ParseFlowAction(name string) (FlowAction, bool) {
	for action, n := range flowActionNames {
		if n == name {
			return action, true
		}
	}
	return 0, false
}

// FlowKind is the mode code of a flow segment
type FlowKind int

const (
	FlowColor       FlowKind = 1
	FlowTemperature FlowKind = 2
	FlowSleep       FlowKind = 7
)

// FlowSegment is one step of a color flow
type FlowSegment struct {
	Duration    time.Duration
	Kind        FlowKind
	Color       device.RGB // FlowColor only
	Temperature uint16     // FlowTemperature only
	Brightness  uint8      // ignored for FlowSleep
}

// ColorSegment fades to an RGB color
func ColorSegment(d time.Duration, color device.RGB, brightness uint8) FlowSegment {
	return FlowSegment{Duration: d, Kind: FlowColor, Color: color, Brightness: brightness}
}

// TemperatureSegment fades to a color temperature
func TemperatureSegment(d time.Duration, kelvin uint16, brightness uint8) FlowSegment {
	return FlowSegment{Duration: d, Kind: FlowTemperature, Temperature: kelvin, Brightness: brightness}
}

// SleepSegment holds the current state
func SleepSegment(d time.Duration) FlowSegment {
	return FlowSegment{Duration: d, Kind: FlowSleep}
}

// expression renders duration,mode,value,brightness
func (s FlowSegment) expression() string {
	var value uint32
	var brightness uint8

	switch s.Kind {
	case FlowColor:
		value, brightness = s.Color.Int(), s.Brightness
	case FlowTemperature:
		value, brightness = uint32(s.Temperature), s.Brightness
	}

	return fmt.Sprintf("%d,%d,%d,%d", s.Duration.Milliseconds(), int(s.Kind), value, brightness)
}

// ColorFlow is a sequence of segments played Count times (0 is forever)
type ColorFlow struct {
	Count    uint16
	Action   FlowAction
	Segments []FlowSegment
}

// Expression renders the flow segments in wire form
func (f ColorFlow) Expression() (string, error) {
	if err := ValidateFlow(f); err != nil {
		return "", err
	}

	parts := make([]string, len(f.Segments))
	for i, s := range f.Segments {
		parts[i] = s.expression()
	}
	return strings.Join(parts, ","), nil
}

func (f ColorFlow) args() ([]protocol.Arg, error) {
	expr, err := f.Expression()
	if err != nil {
		return nil, err
	}
	return []protocol.Arg{
		protocol.IntArg(int(f.Count)),
		protocol.IntArg(int(f.Action)),
		protocol.StringArg(expr),
	}, nil
}

// Scene sets a complete light state in one call
type Scene interface {
	sceneArgs() ([]protocol.Arg, error)
}

// ColorScene sets an RGB color and brightness
type ColorScene struct {
	Color      device.RGB
	Brightness uint8
}

func (s ColorScene) sceneArgs() ([]protocol.Arg, error) {
	if err := ValidateBrightness(s.Brightness); err != nil {
		return nil, err
	}
	return []protocol.Arg{
		protocol.StringArg("color"),
		protocol.IntArg(int(s.Color.Int())),
		protocol.IntArg(int(s.Brightness)),
	}, nil
}

// HSVScene sets hue, saturation and brightness
type HSVScene struct {
	Color      device.HSV
	Brightness uint8
}

func (s HSVScene) sceneArgs() ([]protocol.Arg, error) {
	if err := ValidateHSV(s.Color); err != nil {
		return nil, err
	}
	if err := ValidateBrightness(s.Brightness); err != nil {
		return nil, err
	}
	return []protocol.Arg{
		protocol.StringArg("hsv"),
		protocol.IntArg(int(s.Color.Hue)),
		protocol.IntArg(int(s.Color.Saturation)),
		protocol.IntArg(int(s.Brightness)),
	}, nil
}

// TemperatureScene sets a color temperature and brightness
type TemperatureScene struct {
	Kelvin     uint16
	Brightness uint8
}

func (s TemperatureScene) sceneArgs() ([]protocol.Arg, error) {
	if err := ValidateTemperature(s.Kelvin); err != nil {
		return nil, err
	}
	if err := ValidateBrightness(s.Brightness); err != nil {
		return nil, err
	}
	return []protocol.Arg{
		protocol.StringArg("ct"),
		protocol.IntArg(int(s.Kelvin)),
		protocol.IntArg(int(s.Brightness)),
	}, nil
}

// FlowScene starts a color flow
type FlowScene struct {
	Flow ColorFlow
}

func (s FlowScene) sceneArgs() ([]protocol.Arg, error) {
	args, err := s.Flow.args()
	if err != nil {
		return nil, err
	}
	return append([]protocol.Arg{protocol.StringArg("cf")}, args...), nil
}

// AutoDelayOffScene turns the light on at Brightness and off after Minutes
type AutoDelayOffScene struct {
	Brightness uint8
	Minutes    uint16
}

func (s AutoDelayOffScene) sceneArgs() ([]protocol.Arg, error) {
	if err := ValidateAutoDelayOff(s.Brightness, s.Minutes); err != nil {
		return nil, err
	}
	return []protocol.Arg{
		protocol.StringArg("auto_delay_off"),
		protocol.IntArg(int(s.Brightness)),
		protocol.IntArg(int(s.Minutes)),
	}, nil
}

// CronKind is the type of a timer job. Devices only implement power off.
type CronKind int

const CronPowerOff CronKind = 0

// Cron is a timer job that fires after Minutes
type Cron struct {
	Kind    CronKind
	Minutes uint16
}

func (c Cron) String() string {
	return fmt.Sprintf("power off in %d min", c.Minutes)
}

// AdjustAction is a relative change applied by set_adjust
type AdjustAction string

const (
	AdjustIncrease AdjustAction = "increase"
	AdjustDecrease AdjustAction = "decrease"
	AdjustCircle   AdjustAction = "circle"
)

// AdjustProp is the property changed by set_adjust
type AdjustProp string

const (
	AdjustBrightness  AdjustProp = "bright"
	AdjustTemperature AdjustProp = "ct"
	AdjustColor       AdjustProp = "color"
)

// ParseAdjust parses an action and property pair
func ParseAdjust(action, prop string) (AdjustAction, AdjustProp, error) {
	a := AdjustAction(action)
	switch a {
	case AdjustIncrease, AdjustDecrease, AdjustCircle:
	default:
		return "", "", newBadRequest("unknown adjust action %q", action)
	}

	p := AdjustProp(prop)
	switch p {
	case AdjustBrightness, AdjustTemperature, AdjustColor:
	default:
		return "", "", newBadRequest("unknown adjust property %q", prop)
	}
	return a, p, nil
}

// MusicMode switches streaming mode. When On, the device opens a TCP
// connection to Host:Port and accepts commands there without rate limits.
type MusicMode struct {
	On   bool
	Host string
	Port int
}

// MusicOn streams to host:port
func MusicOn(host string, port int) MusicMode {
	return MusicMode{On: true, Host: host, Port: port}
}

// MusicOff stops streaming
var MusicOff = MusicMode{}

func (m MusicMode) args() ([]protocol.Arg, error) {
	if !m.On {
		return []protocol.Arg{protocol.IntArg(0)}, nil
	}
	if err := ValidateMusicTarget(m.Host, m.Port); err != nil {
		return nil, err
	}
	return []protocol.Arg{
		protocol.IntArg(1),
		protocol.StringArg(m.Host),
		protocol.IntArg(int(m.Port)),
	}, nil
}

// ParsePowerMode parses a numeric power mode
func ParsePowerMode(s string) (PowerMode, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, newBadRequest("power mode %q is not a number", s)
	}
	mode := PowerMode(n)
	if err := ValidatePowerMode(mode); err != nil {
		return 0, err
	}
	return mode, nil
}
