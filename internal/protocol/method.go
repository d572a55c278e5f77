package protocol

import "fmt"

// Method identifies a control-protocol method.
type Method int

const (
	MethodGetProp Method = iota
	MethodSetCtAbx
	MethodSetRGB
	MethodSetHSV
	MethodSetBright
	MethodSetPower
	MethodToggle
	MethodSetDefault
	MethodStartCf
	MethodStopCf
	MethodSetScene
	MethodCronAdd
	MethodCronGet
	MethodCronDel
	MethodSetAdjust
	MethodSetMusic
	MethodSetName
	MethodBgSetRGB
	MethodBgSetHSV
	MethodBgSetCtAbx
	MethodBgStartCf
	MethodBgStopCf
	MethodBgSetScene
	MethodBgSetDefault
	MethodBgSetPower
	MethodBgSetBright
	MethodBgSetAdjust
	MethodBgToggle
	MethodDevToggle
)

// methodNames is the single source of wire names. Both the encoder and the
// capability parser go through it.
var methodNames = map[Method]string{
	MethodGetProp:      "get_prop",
	MethodSetCtAbx:     "set_ct_abx",
	MethodSetRGB:       "set_rgb",
	MethodSetHSV:       "set_hsv",
	MethodSetBright:    "set_bright",
	MethodSetPower:     "set_power",
	MethodToggle:       "toggle",
	MethodSetDefault:   "set_default",
	MethodStartCf:      "start_cf",
	MethodStopCf:       "stop_cf",
	MethodSetScene:     "set_scene",
	MethodCronAdd:      "cron_add",
	MethodCronGet:      "cron_get",
	MethodCronDel:      "cron_del",
	MethodSetAdjust:    "set_adjust",
	MethodSetMusic:     "set_music",
	MethodSetName:      "set_name",
	MethodBgSetRGB:     "bg_set_rgb",
	MethodBgSetHSV:     "bg_set_hsv",
	MethodBgSetCtAbx:   "bg_set_ct_abx",
	MethodBgStartCf:    "bg_start_cf",
	MethodBgStopCf:     "bg_stop_cf",
	MethodBgSetScene:   "bg_set_scene",
	MethodBgSetDefault: "bg_set_default",
	MethodBgSetPower:   "bg_set_power",
	MethodBgSetBright:  "bg_set_bright",
	MethodBgSetAdjust:  "bg_set_adjust",
	MethodBgToggle:     "bg_toggle",
	MethodDevToggle:    "dev_toggle",
}

var methodsByName = func() map[string]Method {
	m := make(map[string]Method, len(methodNames))
	for method, name := range methodNames {
		m[name] = method
	}
	return m
}()

// String returns the wire name of the method
func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod looks up a method by its wire name.
// Returns false for names this client does not know about.
func ParseMethod(name string) (Method, bool) {
	m, ok := methodsByName[name]
	return m, ok
}

// AllMethods returns every known method in declaration order
func AllMethods() []Method {
	methods := make([]Method, 0, len(methodNames))
	for m := MethodGetProp; m <= MethodDevToggle; m++ {
		methods = append(methods, m)
	}
	return methods
}
