package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sgbasaraner/libyee/internal/control"
	"github.com/sgbasaraner/libyee/internal/device"
	"github.com/sgbasaraner/libyee/internal/discovery"
)

func TestParseRGB(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    device.RGB
		wantErr bool
	}{
		{"components", []string{"255", "128", "0"}, device.RGB{R: 255, G: 128}, false},
		{"hex", []string{"#00ff80"}, device.RGB{G: 255, B: 128}, false},
		{"bare hex", []string{"0000ff"}, device.RGB{B: 255}, false},
		{"short hex", []string{"fff"}, device.RGB{}, true},
		{"component overflow", []string{"256", "0", "0"}, device.RGB{}, true},
		{"two values", []string{"1", "2"}, device.RGB{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRGB(tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestTransition(t *testing.T) {
	t.Cleanup(func() { smoothMs = 0 })

	smoothMs = 0
	mode, err := transition()
	require.NoError(t, err)
	require.False(t, mode.IsSmooth())

	smoothMs = 500
	mode, err = transition()
	require.NoError(t, err)
	require.True(t, mode.IsSmooth())
	require.Equal(t, 500*time.Millisecond, mode.Duration())

	smoothMs = 10
	_, err = transition()
	require.True(t, control.IsBadRequest(err))
}

func TestParseFlowSegment(t *testing.T) {
	tests := []struct {
		expr    string
		want    control.FlowSegment
		wantErr bool
	}{
		{"c:1s:ff0000:100", control.ColorSegment(time.Second, device.RGB{R: 255}, 100), false},
		{"t:500ms:2700:40", control.TemperatureSegment(500*time.Millisecond, 2700, 40), false},
		{"s:2s", control.SleepSegment(2 * time.Second), false},
		{"c:1s:ff0000", control.FlowSegment{}, true},
		{"t:1s:1000:40", control.FlowSegment{}, true},
		{"s:10ms", control.FlowSegment{}, true},
		{"x:1s", control.FlowSegment{}, true},
		{"c:soon:ff0000:100", control.FlowSegment{}, true},
		{"c", control.FlowSegment{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := parseFlowSegment(tt.expr)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseFlow(t *testing.T) {
	flow, err := parseFlow(3, "off", []string{"c:1s:ff0000:100", "s:500ms"})
	require.NoError(t, err)
	require.Equal(t, uint16(3), flow.Count)
	require.Equal(t, control.FlowTurnOff, flow.Action)

	expr, err := flow.Expression()
	require.NoError(t, err)
	require.Equal(t, "1000,1,16711680,100,500,7,0,0", expr)

	_, err = parseFlow(0, "later", []string{"s:1s"})
	require.Error(t, err)
}

func TestScanPolicy(t *testing.T) {
	t.Cleanup(func() {
		scanTimeout, scanCount, scanIDs = 0, 0, nil
	})

	policy, timeout := scanPolicy(3 * time.Second)
	require.Equal(t, discovery.Duration(3*time.Second).String(), policy.String())
	require.Equal(t, 3*time.Second, timeout)

	scanCount, scanTimeout = 2, 10*time.Second
	policy, timeout = scanPolicy(3 * time.Second)
	require.Equal(t, discovery.MinimumCount(2).String(), policy.String())
	require.Equal(t, 10*time.Second, timeout)

	scanCount, scanIDs = 0, []string{"0x01"}
	policy, _ = scanPolicy(3 * time.Second)
	require.Equal(t, discovery.TargetIDs("0x01").String(), policy.String())
}

func TestPlainLine(t *testing.T) {
	got := plainLine("desk (0x01)", map[string]string{"power": "on", "bright": "40"})
	require.Equal(t, "desk (0x01) ok bright=40 power=on", got)
}

func TestLabel(t *testing.T) {
	d := &device.Descriptor{ID: "0x01"}
	require.Equal(t, "0x01", label(d, nil))
	require.Equal(t, "desk (0x01)", label(d, map[string]string{"0x01": "desk"}))
}
