package control

import (
	"fmt"

	"github.com/sgbasaraner/libyee/internal/device"
	"github.com/sgbasaraner/libyee/internal/protocol"
)

// Light selects the main or the background light of a device
type Light int

const (
	MainLight Light = iota
	BackgroundLight
)

// backgroundMethods maps a main light method to its background twin
var backgroundMethods = map[protocol.Method]protocol.Method{
	protocol.MethodSetRGB:     protocol.MethodBgSetRGB,
	protocol.MethodSetHSV:     protocol.MethodBgSetHSV,
	protocol.MethodSetCtAbx:   protocol.MethodBgSetCtAbx,
	protocol.MethodStartCf:    protocol.MethodBgStartCf,
	protocol.MethodStopCf:     protocol.MethodBgStopCf,
	protocol.MethodSetScene:   protocol.MethodBgSetScene,
	protocol.MethodSetDefault: protocol.MethodBgSetDefault,
	protocol.MethodSetPower:   protocol.MethodBgSetPower,
	protocol.MethodSetBright:  protocol.MethodBgSetBright,
	protocol.MethodSetAdjust:  protocol.MethodBgSetAdjust,
	protocol.MethodToggle:     protocol.MethodBgToggle,
}

func (l Light) method(m protocol.Method) protocol.Method {
	if l == BackgroundLight {
		if bg, ok := backgroundMethods[m]; ok {
			return bg
		}
	}
	return m
}

func (l Light) String() string {
	if l == BackgroundLight {
		return "background"
	}
	return "main"
}

// GetProp reads properties. Values come back in request order; properties
// the device does not know are returned as empty strings.
func (c *Conn) GetProp(props ...string) ([]string, error) {
	if err := ValidateProps(props); err != nil {
		return nil, err
	}

	args := make([]protocol.Arg, len(props))
	for i, p := range props {
		args[i] = protocol.StringArg(p)
	}
	return c.callStrings(protocol.MethodGetProp, args...)
}

// Properties is GetProp keyed by property name
func (c *Conn) Properties(props ...string) (map[string]string, error) {
	values, err := c.GetProp(props...)
	if err != nil {
		return nil, err
	}
	if len(values) != len(props) {
		return nil, &CallError{
			Kind:    ErrParse,
			Method:  protocol.MethodGetProp.String(),
			Message: fmt.Sprintf("asked for %d properties, got %d values", len(props), len(values)),
		}
	}

	out := make(map[string]string, len(props))
	for i, p := range props {
		out[p] = values[i]
	}
	return out, nil
}

// SetCtAbx sets the color temperature
func (c *Conn) SetCtAbx(kelvin uint16, mode TransitionMode) ([]string, error) {
	return c.setCtAbx(MainLight, kelvin, mode)
}

// BgSetCtAbx sets the background light's color temperature
func (c *Conn) BgSetCtAbx(kelvin uint16, mode TransitionMode) ([]string, error) {
	return c.setCtAbx(BackgroundLight, kelvin, mode)
}

func (c *Conn) setCtAbx(light Light, kelvin uint16, mode TransitionMode) ([]string, error) {
	if err := ValidateTemperature(kelvin); err != nil {
		return nil, err
	}
	effect, err := mode.args()
	if err != nil {
		return nil, err
	}
	args := append([]protocol.Arg{protocol.IntArg(int(kelvin))}, effect...)
	return c.callStrings(light.method(protocol.MethodSetCtAbx), args...)
}

// SetRGB sets an RGB color
func (c *Conn) SetRGB(color device.RGB, mode TransitionMode) ([]string, error) {
	return c.setRGB(MainLight, color, mode)
}

// BgSetRGB sets the background light's RGB color
func (c *Conn) BgSetRGB(color device.RGB, mode TransitionMode) ([]string, error) {
	return c.setRGB(BackgroundLight, color, mode)
}

func (c *Conn) setRGB(light Light, color device.RGB, mode TransitionMode) ([]string, error) {
	effect, err := mode.args()
	if err != nil {
		return nil, err
	}
	args := append([]protocol.Arg{protocol.IntArg(int(color.Int()))}, effect...)
	return c.callStrings(light.method(protocol.MethodSetRGB), args...)
}

// SetHSV sets hue and saturation
func (c *Conn) SetHSV(color device.HSV, mode TransitionMode) ([]string, error) {
	return c.setHSV(MainLight, color, mode)
}

// BgSetHSV sets the background light's hue and saturation
func (c *Conn) BgSetHSV(color device.HSV, mode TransitionMode) ([]string, error) {
	return c.setHSV(BackgroundLight, color, mode)
}

func (c *Conn) setHSV(light Light, color device.HSV, mode TransitionMode) ([]string, error) {
	if err := ValidateHSV(color); err != nil {
		return nil, err
	}
	effect, err := mode.args()
	if err != nil {
		return nil, err
	}
	args := append([]protocol.Arg{
		protocol.IntArg(int(color.Hue)),
		protocol.IntArg(int(color.Saturation)),
	}, effect...)
	return c.callStrings(light.method(protocol.MethodSetHSV), args...)
}

// SetBright sets the brightness percentage
func (c *Conn) SetBright(brightness uint8, mode TransitionMode) ([]string, error) {
	return c.setBright(MainLight, brightness, mode)
}

// BgSetBright sets the background light's brightness percentage
func (c *Conn) BgSetBright(brightness uint8, mode TransitionMode) ([]string, error) {
	return c.setBright(BackgroundLight, brightness, mode)
}

func (c *Conn) setBright(light Light, brightness uint8, mode TransitionMode) ([]string, error) {
	if err := ValidateBrightness(brightness); err != nil {
		return nil, err
	}
	effect, err := mode.args()
	if err != nil {
		return nil, err
	}
	args := append([]protocol.Arg{protocol.IntArg(int(brightness))}, effect...)
	return c.callStrings(light.method(protocol.MethodSetBright), args...)
}

// SetPower switches the light on or off. PowerModeDefault leaves the
// lighting mode unchanged.
func (c *Conn) SetPower(power device.Power, mode TransitionMode, powerMode PowerMode) ([]string, error) {
	return c.setPower(MainLight, power, mode, powerMode)
}

// BgSetPower switches the background light on or off
func (c *Conn) BgSetPower(power device.Power, mode TransitionMode, powerMode PowerMode) ([]string, error) {
	return c.setPower(BackgroundLight, power, mode, powerMode)
}

func (c *Conn) setPower(light Light, power device.Power, mode TransitionMode, powerMode PowerMode) ([]string, error) {
	if err := ValidatePowerMode(powerMode); err != nil {
		return nil, err
	}
	effect, err := mode.args()
	if err != nil {
		return nil, err
	}

	args := append([]protocol.Arg{protocol.StringArg(power.String())}, effect...)
	if powerMode != PowerModeDefault {
		args = append(args, protocol.IntArg(int(powerMode)))
	}
	return c.callStrings(light.method(protocol.MethodSetPower), args...)
}

// Toggle flips the power state
func (c *Conn) Toggle() ([]string, error) {
	return c.callStrings(protocol.MethodToggle)
}

// BgToggle flips the background light's power state
func (c *Conn) BgToggle() ([]string, error) {
	return c.callStrings(protocol.MethodBgToggle)
}

// DevToggle flips both lights
func (c *Conn) DevToggle() ([]string, error) {
	return c.callStrings(protocol.MethodDevToggle)
}

// SetDefault saves the current state as the power-on default
func (c *Conn) SetDefault() ([]string, error) {
	return c.callStrings(protocol.MethodSetDefault)
}

// BgSetDefault saves the background light's current state
func (c *Conn) BgSetDefault() ([]string, error) {
	return c.callStrings(protocol.MethodBgSetDefault)
}

// StartCf starts a color flow
func (c *Conn) StartCf(flow ColorFlow) ([]string, error) {
	return c.startCf(MainLight, flow)
}

// BgStartCf starts a color flow on the background light
func (c *Conn) BgStartCf(flow ColorFlow) ([]string, error) {
	return c.startCf(BackgroundLight, flow)
}

func (c *Conn) startCf(light Light, flow ColorFlow) ([]string, error) {
	args, err := flow.args()
	if err != nil {
		return nil, err
	}
	return c.callStrings(light.method(protocol.MethodStartCf), args...)
}

// StopCf stops a running color flow
func (c *Conn) StopCf() ([]string, error) {
	return c.callStrings(protocol.MethodStopCf)
}

// BgStopCf stops a color flow on the background light
func (c *Conn) BgStopCf() ([]string, error) {
	return c.callStrings(protocol.MethodBgStopCf)
}

// SetScene sets a complete state in one call, switching the light on
func (c *Conn) SetScene(scene Scene) ([]string, error) {
	return c.setScene(MainLight, scene)
}

// BgSetScene sets a complete state on the background light
func (c *Conn) BgSetScene(scene Scene) ([]string, error) {
	return c.setScene(BackgroundLight, scene)
}

func (c *Conn) setScene(light Light, scene Scene) ([]string, error) {
	if scene == nil {
		return nil, newBadRequest("scene is required")
	}
	args, err := scene.sceneArgs()
	if err != nil {
		return nil, err
	}
	return c.callStrings(light.method(protocol.MethodSetScene), args...)
}

// CronAdd starts a timer job
func (c *Conn) CronAdd(job Cron) ([]string, error) {
	if job.Kind != CronPowerOff {
		return nil, newBadRequest("unknown cron kind %d", int(job.Kind))
	}
	return c.callStrings(protocol.MethodCronAdd, protocol.IntArg(int(job.Kind)), protocol.IntArg(int(job.Minutes)))
}

// CronGet returns the timer jobs of one kind
func (c *Conn) CronGet(kind CronKind) ([]Cron, error) {
	resp, err := c.Call(protocol.MethodCronGet, protocol.IntArg(int(kind)))
	if err != nil {
		return nil, err
	}

	entries, err := resp.CronEntries()
	if err != nil {
		return nil, newParseError(protocol.MethodCronGet.String(), err)
	}

	jobs := make([]Cron, 0, len(entries))
	for _, e := range entries {
		if CronKind(e.Type) != CronPowerOff {
			return nil, &CallError{
				Kind:    ErrParse,
				Method:  protocol.MethodCronGet.String(),
				Message: fmt.Sprintf("unknown cron kind %d in response", e.Type),
			}
		}
		jobs = append(jobs, Cron{Kind: CronKind(e.Type), Minutes: e.Delay})
	}
	return jobs, nil
}

// CronDel cancels the timer jobs of one kind
func (c *Conn) CronDel(kind CronKind) ([]string, error) {
	return c.callStrings(protocol.MethodCronDel, protocol.IntArg(int(kind)))
}

// SetAdjust changes a property relative to its current value
func (c *Conn) SetAdjust(action AdjustAction, prop AdjustProp) ([]string, error) {
	return c.setAdjust(MainLight, action, prop)
}

// BgSetAdjust changes a background light property relative to its current value
func (c *Conn) BgSetAdjust(action AdjustAction, prop AdjustProp) ([]string, error) {
	return c.setAdjust(BackgroundLight, action, prop)
}

func (c *Conn) setAdjust(light Light, action AdjustAction, prop AdjustProp) ([]string, error) {
	if _, _, err := ParseAdjust(string(action), string(prop)); err != nil {
		return nil, err
	}
	return c.callStrings(light.method(protocol.MethodSetAdjust), protocol.StringArg(string(action)), protocol.StringArg(string(prop)))
}

// SetMusic switches music mode on or off
func (c *Conn) SetMusic(mode MusicMode) ([]string, error) {
	args, err := mode.args()
	if err != nil {
		return nil, err
	}
	return c.callStrings(protocol.MethodSetMusic, args...)
}

// SetName stores a name on the device
func (c *Conn) SetName(name string) ([]string, error) {
	return c.callStrings(protocol.MethodSetName, protocol.StringArg(name))
}
