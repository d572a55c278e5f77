package device

import (
	"testing"

	"github.com/sgbasaraner/libyee/internal/protocol"
)

func TestRGB_IntRoundTrip(t *testing.T) {
	tests := []struct {
		value uint32
		want  RGB
	}{
		{0xFFFFFF, RGB{R: 255, G: 255, B: 255}},
		{0x0000FF, RGB{B: 255}},
		{0x00FF00, RGB{G: 255}},
		{16711680, RGB{R: 255}},
		{0, RGB{}},
	}

	for _, tt := range tests {
		got := RGBFromInt(tt.value)
		if got != tt.want {
			t.Errorf("RGBFromInt(%d) = %v, want %v", tt.value, got, tt.want)
		}
		if got.Int() != tt.value {
			t.Errorf("RGB(%v).Int() = %d, want %d", got, got.Int(), tt.value)
		}
	}
}

func TestHSV_Valid(t *testing.T) {
	tests := []struct {
		hsv  HSV
		want bool
	}{
		{HSV{Hue: 0, Saturation: 0}, true},
		{HSV{Hue: 359, Saturation: 100}, true},
		{HSV{Hue: 360, Saturation: 50}, false},
		{HSV{Hue: 10, Saturation: 101}, false},
	}

	for _, tt := range tests {
		if got := tt.hsv.Valid(); got != tt.want {
			t.Errorf("%v.Valid() = %v, want %v", tt.hsv, got, tt.want)
		}
	}
}

func TestParsePower(t *testing.T) {
	if p, ok := ParsePower("on"); !ok || p != PowerOn {
		t.Errorf("ParsePower(on) = %v, %v", p, ok)
	}
	if p, ok := ParsePower("off"); !ok || p != PowerOff {
		t.Errorf("ParsePower(off) = %v, %v", p, ok)
	}
	if _, ok := ParsePower("ON"); ok {
		t.Error("ParsePower(ON) ok = true, want false")
	}
	if PowerOn.String() != "on" {
		t.Errorf("PowerOn.String() = %q", PowerOn.String())
	}
}

func TestParseSupport(t *testing.T) {
	set := ParseSupport("get_prop  toggle unknown_thing set_rgb")

	if len(set) != 3 {
		t.Errorf("len(set) = %d, want 3", len(set))
	}
	for _, m := range []protocol.Method{protocol.MethodGetProp, protocol.MethodToggle, protocol.MethodSetRGB} {
		if !set.Has(m) {
			t.Errorf("set.Has(%v) = false, want true", m)
		}
	}
	if set.String() != "get_prop set_rgb toggle" {
		t.Errorf("set.String() = %q", set.String())
	}
}

func TestNewMethodSet(t *testing.T) {
	set := NewMethodSet(protocol.MethodToggle)
	if !set.Has(protocol.MethodToggle) || set.Has(protocol.MethodGetProp) {
		t.Errorf("NewMethodSet(toggle) = %v", set)
	}

	var empty MethodSet
	if empty.Has(protocol.MethodToggle) {
		t.Error("nil MethodSet.Has() = true, want false")
	}
}
