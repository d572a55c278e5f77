package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sgbasaraner/libyee/internal/control"
	"github.com/sgbasaraner/libyee/internal/device"
)

// defaultProps is what 'yee props' reads when no names are given
var defaultProps = []string{"power", "bright", "ct", "rgb", "hue", "sat", "color_mode", "flowing", "delayoff", "music_on", "name"}

// Command flags
var (
	powerMode   string
	verifyState bool
	devToggle   bool
	flowCount   uint16
	flowAction  string
)

func init() {
	rootCmd.AddCommand(propsCmd)
	rootCmd.AddCommand(powerCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(brightCmd)
	rootCmd.AddCommand(ctCmd)
	rootCmd.AddCommand(rgbCmd)
	rootCmd.AddCommand(hsvCmd)
	rootCmd.AddCommand(nameCmd)
	rootCmd.AddCommand(defaultCmd)
	rootCmd.AddCommand(adjustCmd)

	for _, c := range []*cobra.Command{powerCmd, brightCmd, ctCmd, rgbCmd, hsvCmd} {
		c.Flags().BoolVar(&verifyState, "verify", false, "Read the state back and fail if it did not change")
	}
	powerCmd.Flags().StringVar(&powerMode, "mode", "", "Mode to switch on in (1 ct, 2 rgb, 3 hsv, 4 flow, 5 night light)")
	toggleCmd.Flags().BoolVar(&devToggle, "all", false, "Toggle main and background light together")
}

func resultDetails(result []string) map[string]string {
	return map[string]string{"Result": strings.Join(result, " ")}
}

// verified reads the expected state back when --verify is set
func verified(conn *control.Conn, mode control.TransitionMode, expected map[string]string, result []string, err error) (map[string]string, error) {
	details := resultDetails(result)
	if err != nil || !verifyState {
		return details, err
	}

	light := control.MainLight
	if background {
		light = control.BackgroundLight
	}
	opts := control.DefaultVerificationOptions()
	opts.InitialDelay += mode.Duration()

	v := conn.Verify(control.ExpectedProps(light, expected), opts)
	if !v.Success {
		return details, v.Error
	}
	details["Verified"] = fmt.Sprintf("%d attempt(s)", v.Attempts)
	return details, nil
}

var propsCmd = &cobra.Command{
	Use:   "props [PROP...]",
	Short: "Read light properties",
	Long: `Read properties from a light with get_prop.

Without arguments the common properties are read. Background light
properties use the bg_ prefix (bg_power, bg_bright, ...).`,
	Example: `  yee props --device desk
  yee props --device desk power bright bg_power`,
	RunE: func(cmd *cobra.Command, args []string) error {
		props := args
		if len(props) == 0 {
			props = defaultProps
		}
		if err := control.ValidateProps(props); err != nil {
			return err
		}

		return runOnLights(cmd, "Properties", func(conn *control.Conn) (map[string]string, error) {
			values, err := conn.Properties(props...)
			if err != nil {
				return nil, err
			}
			details := make(map[string]string, len(values))
			for k, v := range values {
				if v == "" {
					v = "-"
				}
				details[k] = v
			}
			return details, nil
		})
	},
}

var powerCmd = &cobra.Command{
	Use:       "power on|off",
	Short:     "Switch a light on or off",
	Example:   "  yee power on --device desk --smooth 500 --mode 2",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		power, ok := device.ParsePower(args[0])
		if !ok {
			return fmt.Errorf("invalid power state %q (want on or off)", args[0])
		}
		mode, err := transition()
		if err != nil {
			return err
		}
		pm := control.PowerModeDefault
		if powerMode != "" {
			if pm, err = control.ParsePowerMode(powerMode); err != nil {
				return err
			}
		}

		return runOnLights(cmd, "Power "+power.String(), func(conn *control.Conn) (map[string]string, error) {
			set := conn.SetPower
			if background {
				set = conn.BgSetPower
			}
			result, err := set(power, mode, pm)
			return verified(conn, mode, map[string]string{"power": power.String()}, result, err)
		})
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Toggle a light",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnLights(cmd, "Toggled", func(conn *control.Conn) (map[string]string, error) {
			toggle := conn.Toggle
			switch {
			case devToggle:
				toggle = conn.DevToggle
			case background:
				toggle = conn.BgToggle
			}
			result, err := toggle()
			return resultDetails(result), err
		})
	},
}

var brightCmd = &cobra.Command{
	Use:     "bright PERCENT",
	Short:   "Set brightness (0-100)",
	Example: "  yee bright 40 --device desk --smooth 300",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		brightness, err := parseUint8("brightness", args[0])
		if err != nil {
			return err
		}
		if err := control.ValidateBrightness(brightness); err != nil {
			return err
		}
		mode, err := transition()
		if err != nil {
			return err
		}

		return runOnLights(cmd, "Brightness set", func(conn *control.Conn) (map[string]string, error) {
			set := conn.SetBright
			if background {
				set = conn.BgSetBright
			}
			result, err := set(brightness, mode)
			return verified(conn, mode, map[string]string{"bright": strconv.Itoa(int(brightness))}, result, err)
		})
	},
}

var ctCmd = &cobra.Command{
	Use:   "ct KELVIN",
	Short: "Set color temperature (1700-6500)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kelvin, err := parseUint16("temperature", args[0])
		if err != nil {
			return err
		}
		if err := control.ValidateTemperature(kelvin); err != nil {
			return err
		}
		mode, err := transition()
		if err != nil {
			return err
		}

		return runOnLights(cmd, "Color temperature set", func(conn *control.Conn) (map[string]string, error) {
			set := conn.SetCtAbx
			if background {
				set = conn.BgSetCtAbx
			}
			result, err := set(kelvin, mode)
			return verified(conn, mode, map[string]string{"ct": strconv.Itoa(int(kelvin))}, result, err)
		})
	},
}

var rgbCmd = &cobra.Command{
	Use:   "rgb R G B | rgb RRGGBB",
	Short: "Set an RGB color",
	Example: `  yee rgb 255 128 0 --device desk
  yee rgb ff8000 --device desk`,
	Args: cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		color, err := parseRGB(args)
		if err != nil {
			return err
		}
		mode, err := transition()
		if err != nil {
			return err
		}

		return runOnLights(cmd, "Color set to "+color.String(), func(conn *control.Conn) (map[string]string, error) {
			set := conn.SetRGB
			if background {
				set = conn.BgSetRGB
			}
			result, err := set(color, mode)
			return verified(conn, mode, map[string]string{"rgb": strconv.FormatUint(uint64(color.Int()), 10)}, result, err)
		})
	},
}

var hsvCmd = &cobra.Command{
	Use:   "hsv HUE SAT",
	Short: "Set hue (0-359) and saturation (0-100)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		color, err := parseHSV(args[0], args[1])
		if err != nil {
			return err
		}
		if err := control.ValidateHSV(color); err != nil {
			return err
		}
		mode, err := transition()
		if err != nil {
			return err
		}

		return runOnLights(cmd, "Color set", func(conn *control.Conn) (map[string]string, error) {
			set := conn.SetHSV
			if background {
				set = conn.BgSetHSV
			}
			result, err := set(color, mode)
			return verified(conn, mode, map[string]string{
				"hue": strconv.Itoa(int(color.Hue)),
				"sat": strconv.Itoa(int(color.Saturation)),
			}, result, err)
		})
	},
}

var nameCmd = &cobra.Command{
	Use:   "name NAME",
	Short: "Store a name on the light itself",
	Long: `Store a name on the light with set_name.

The name is kept by the light and shows up in discovery. To give a light
a local nickname instead, use 'yee alias'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnLights(cmd, "Name set", func(conn *control.Conn) (map[string]string, error) {
			result, err := conn.SetName(args[0])
			return resultDetails(result), err
		})
	},
}

var defaultCmd = &cobra.Command{
	Use:   "default",
	Short: "Save the current state as the power-on default",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnLights(cmd, "Default saved", func(conn *control.Conn) (map[string]string, error) {
			set := conn.SetDefault
			if background {
				set = conn.BgSetDefault
			}
			result, err := set()
			return resultDetails(result), err
		})
	},
}

var adjustCmd = &cobra.Command{
	Use:   "adjust increase|decrease|circle bright|ct|color",
	Short: "Change a property relative to its current value",
	Long: `Change brightness, color temperature or color without knowing the
current value. The color property only accepts circle.`,
	Example: "  yee adjust increase bright --device desk",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		action, prop, err := control.ParseAdjust(args[0], args[1])
		if err != nil {
			return err
		}

		return runOnLights(cmd, "Adjusted", func(conn *control.Conn) (map[string]string, error) {
			set := conn.SetAdjust
			if background {
				set = conn.BgSetAdjust
			}
			result, err := set(action, prop)
			return resultDetails(result), err
		})
	},
}

// sceneCmd sets a full light state in one call
var sceneCmd = &cobra.Command{
	Use:   "scene",
	Short: "Set color, brightness and mode in one call",
}

var sceneColorCmd = &cobra.Command{
	Use:   "color RRGGBB BRIGHT",
	Short: "Switch on with an RGB color",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		color, err := parseRGB(args[:1])
		if err != nil {
			return err
		}
		brightness, err := parseUint8("brightness", args[1])
		if err != nil {
			return err
		}
		return runScene(cmd, control.ColorScene{Color: color, Brightness: brightness})
	},
}

var sceneHSVCmd = &cobra.Command{
	Use:   "hsv HUE SAT BRIGHT",
	Short: "Switch on with a hue and saturation",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		color, err := parseHSV(args[0], args[1])
		if err != nil {
			return err
		}
		brightness, err := parseUint8("brightness", args[2])
		if err != nil {
			return err
		}
		return runScene(cmd, control.HSVScene{Color: color, Brightness: brightness})
	},
}

var sceneCtCmd = &cobra.Command{
	Use:   "ct KELVIN BRIGHT",
	Short: "Switch on with a color temperature",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kelvin, err := parseUint16("temperature", args[0])
		if err != nil {
			return err
		}
		brightness, err := parseUint8("brightness", args[1])
		if err != nil {
			return err
		}
		return runScene(cmd, control.TemperatureScene{Kelvin: kelvin, Brightness: brightness})
	},
}

var sceneAutoOffCmd = &cobra.Command{
	Use:   "auto-off BRIGHT MINUTES",
	Short: "Switch on and off again after MINUTES",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		brightness, err := parseUint8("brightness", args[0])
		if err != nil {
			return err
		}
		minutes, err := parseUint16("minutes", args[1])
		if err != nil {
			return err
		}
		return runScene(cmd, control.AutoDelayOffScene{Brightness: brightness, Minutes: minutes})
	},
}

var sceneFlowCmd = &cobra.Command{
	Use:   "flow SEGMENT...",
	Short: "Switch on and start a color flow",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flow, err := parseFlow(flowCount, flowAction, args)
		if err != nil {
			return err
		}
		return runScene(cmd, control.FlowScene{Flow: flow})
	},
}

func runScene(cmd *cobra.Command, scene control.Scene) error {
	return runOnLights(cmd, "Scene set", func(conn *control.Conn) (map[string]string, error) {
		set := conn.SetScene
		if background {
			set = conn.BgSetScene
		}
		result, err := set(scene)
		return resultDetails(result), err
	})
}

// flowCmd starts and stops color flows
var flowCmd = &cobra.Command{
	Use:   "flow",
	Short: "Start or stop a color flow",
}

const flowSegmentHelp = `Segments:
  c:DURATION:RRGGBB:BRIGHT   fade to a color
  t:DURATION:KELVIN:BRIGHT   fade to a color temperature
  s:DURATION                 hold the current state

DURATION uses Go duration syntax and must be at least 50ms.`

var flowStartCmd = &cobra.Command{
	Use:   "start SEGMENT...",
	Short: "Start a color flow",
	Long:  "Start a color flow made of one or more segments.\n\n" + flowSegmentHelp,
	Example: `  # Pulse red and blue forever
  yee flow start c:1s:ff0000:100 c:1s:0000ff:100 --device desk

  # Warm up over a minute, three times, then switch off
  yee flow start t:30s:2700:10 t:30s:4000:100 --count 3 --action off`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flow, err := parseFlow(flowCount, flowAction, args)
		if err != nil {
			return err
		}
		expr, err := flow.Expression()
		if err != nil {
			return err
		}

		return runOnLights(cmd, "Flow started", func(conn *control.Conn) (map[string]string, error) {
			start := conn.StartCf
			if background {
				start = conn.BgStartCf
			}
			result, err := start(flow)
			details := resultDetails(result)
			details["Flow"] = expr
			return details, err
		})
	},
}

var flowStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running color flow",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnLights(cmd, "Flow stopped", func(conn *control.Conn) (map[string]string, error) {
			stop := conn.StopCf
			if background {
				stop = conn.BgStopCf
			}
			result, err := stop()
			return resultDetails(result), err
		})
	},
}

// cronCmd manages the power-off timer
var cronCmd = &cobra.Command{
	Use:   "cron",
	Short: "Manage the power-off timer",
}

var cronAddCmd = &cobra.Command{
	Use:   "add MINUTES",
	Short: "Switch the light off after MINUTES",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, err := parseUint16("minutes", args[0])
		if err != nil {
			return err
		}
		job := control.Cron{Kind: control.CronPowerOff, Minutes: minutes}

		return runOnLights(cmd, "Timer set", func(conn *control.Conn) (map[string]string, error) {
			result, err := conn.CronAdd(job)
			details := resultDetails(result)
			details["Timer"] = job.String()
			return details, err
		})
	},
}

var cronGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the power-off timer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnLights(cmd, "Timers", func(conn *control.Conn) (map[string]string, error) {
			jobs, err := conn.CronGet(control.CronPowerOff)
			if err != nil {
				return nil, err
			}
			if len(jobs) == 0 {
				return map[string]string{"Timer": "none"}, nil
			}
			details := make(map[string]string, len(jobs))
			for i, job := range jobs {
				details["Timer "+strconv.Itoa(i+1)] = job.String()
			}
			return details, nil
		})
	},
}

var cronDelCmd = &cobra.Command{
	Use:   "del",
	Short: "Cancel the power-off timer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnLights(cmd, "Timer cancelled", func(conn *control.Conn) (map[string]string, error) {
			result, err := conn.CronDel(control.CronPowerOff)
			return resultDetails(result), err
		})
	},
}

// musicCmd toggles music mode
var musicCmd = &cobra.Command{
	Use:   "music on HOST PORT | music off",
	Short: "Start or stop music mode",
	Long: `In music mode the light connects to HOST:PORT and accepts commands on
that connection without rate limiting. A listener must already be running
there.`,
	Args: cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := control.MusicOff
		switch args[0] {
		case "on":
			if len(args) != 3 {
				return fmt.Errorf("music on needs HOST and PORT")
			}
			port, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid port %q: %w", args[2], err)
			}
			if err := control.ValidateMusicTarget(args[1], port); err != nil {
				return err
			}
			mode = control.MusicOn(args[1], port)
		case "off":
			if len(args) != 1 {
				return fmt.Errorf("music off takes no arguments")
			}
		default:
			return fmt.Errorf("invalid music state %q (want on or off)", args[0])
		}

		return runOnLights(cmd, "Music mode "+args[0], func(conn *control.Conn) (map[string]string, error) {
			result, err := conn.SetMusic(mode)
			return resultDetails(result), err
		})
	},
}

func init() {
	rootCmd.AddCommand(sceneCmd)
	sceneCmd.AddCommand(sceneColorCmd, sceneHSVCmd, sceneCtCmd, sceneAutoOffCmd, sceneFlowCmd)

	rootCmd.AddCommand(flowCmd)
	flowCmd.AddCommand(flowStartCmd, flowStopCmd)
	for _, c := range []*cobra.Command{flowStartCmd, sceneFlowCmd} {
		c.Flags().Uint16Var(&flowCount, "count", 0, "Times to play the segments (0 repeats forever)")
		c.Flags().StringVar(&flowAction, "action", "recover", "What to do when the flow ends (recover, stay, off)")
	}
	sceneFlowCmd.Long = "Switch the light on and start a color flow.\n\n" + flowSegmentHelp

	rootCmd.AddCommand(cronCmd)
	cronCmd.AddCommand(cronAddCmd, cronGetCmd, cronDelCmd)

	rootCmd.AddCommand(musicCmd)
}
