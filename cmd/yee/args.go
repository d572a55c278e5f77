package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sgbasaraner/libyee/internal/control"
	"github.com/sgbasaraner/libyee/internal/device"
)

func parseUint8(name, value string) (uint8, error) {
	n, err := strconv.ParseUint(value, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	return uint8(n), nil
}

func parseUint16(name, value string) (uint16, error) {
	n, err := strconv.ParseUint(value, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	return uint16(n), nil
}

// parseRGB accepts either three components or one hex color (#ff8800)
func parseRGB(args []string) (device.RGB, error) {
	if len(args) == 1 {
		hex := strings.TrimPrefix(args[0], "#")
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil || len(hex) != 6 {
			return device.RGB{}, fmt.Errorf("invalid color %q: want RRGGBB", args[0])
		}
		return device.RGBFromInt(uint32(v)), nil
	}
	if len(args) != 3 {
		return device.RGB{}, fmt.Errorf("want R G B or RRGGBB, got %d values", len(args))
	}

	var c [3]uint8
	for i, name := range []string{"red", "green", "blue"} {
		v, err := parseUint8(name, args[i])
		if err != nil {
			return device.RGB{}, err
		}
		c[i] = v
	}
	return device.RGB{R: c[0], G: c[1], B: c[2]}, nil
}

func parseHSV(hue, sat string) (device.HSV, error) {
	h, err := parseUint16("hue", hue)
	if err != nil {
		return device.HSV{}, err
	}
	s, err := parseUint8("saturation", sat)
	if err != nil {
		return device.HSV{}, err
	}
	return device.HSV{Hue: h, Saturation: s}, nil
}

// transition builds the effect from --smooth
func transition() (control.TransitionMode, error) {
	if smoothMs <= 0 {
		return control.Sudden, nil
	}
	d := time.Duration(smoothMs) * time.Millisecond
	if err := control.ValidateTransition(d); err != nil {
		return control.Sudden, err
	}
	return control.Smooth(d), nil
}

// parseFlowSegment parses one step of a color flow:
//
//	c:DURATION:RRGGBB:BRIGHT   fade to a color
//	t:DURATION:KELVIN:BRIGHT   fade to a color temperature
//	s:DURATION                 hold
//
// DURATION uses Go duration syntax (500ms, 2s).
func parseFlowSegment(expr string) (control.FlowSegment, error) {
	parts := strings.Split(expr, ":")
	if len(parts) < 2 {
		return control.FlowSegment{}, fmt.Errorf("invalid flow segment %q", expr)
	}

	d, err := time.ParseDuration(parts[1])
	if err != nil {
		return control.FlowSegment{}, fmt.Errorf("invalid flow segment duration %q: %w", parts[1], err)
	}

	var segment control.FlowSegment
	switch parts[0] {
	case "c":
		if len(parts) != 4 {
			return control.FlowSegment{}, fmt.Errorf("color segment %q: want c:DURATION:RRGGBB:BRIGHT", expr)
		}
		color, err := parseRGB(parts[2:3])
		if err != nil {
			return control.FlowSegment{}, err
		}
		bright, err := parseUint8("brightness", parts[3])
		if err != nil {
			return control.FlowSegment{}, err
		}
		segment = control.ColorSegment(d, color, bright)
	case "t":
		if len(parts) != 4 {
			return control.FlowSegment{}, fmt.Errorf("temperature segment %q: want t:DURATION:KELVIN:BRIGHT", expr)
		}
		kelvin, err := parseUint16("temperature", parts[2])
		if err != nil {
			return control.FlowSegment{}, err
		}
		bright, err := parseUint8("brightness", parts[3])
		if err != nil {
			return control.FlowSegment{}, err
		}
		segment = control.TemperatureSegment(d, kelvin, bright)
	case "s":
		if len(parts) != 2 {
			return control.FlowSegment{}, fmt.Errorf("sleep segment %q: want s:DURATION", expr)
		}
		segment = control.SleepSegment(d)
	default:
		return control.FlowSegment{}, fmt.Errorf("unknown flow segment kind %q (want c, t or s)", parts[0])
	}

	if err := control.ValidateFlowSegment(segment); err != nil {
		return control.FlowSegment{}, err
	}
	return segment, nil
}

func parseFlow(count uint16, action string, exprs []string) (control.ColorFlow, error) {
	a, ok := control.ParseFlowAction(action)
	if !ok {
		return control.ColorFlow{}, fmt.Errorf("unknown flow action %q (want recover, stay or off)", action)
	}

	flow := control.ColorFlow{Count: count, Action: a}
	for _, expr := range exprs {
		segment, err := parseFlowSegment(expr)
		if err != nil {
			return control.ColorFlow{}, err
		}
		flow.Segments = append(flow.Segments, segment)
	}
	return flow, control.ValidateFlow(flow)
}
