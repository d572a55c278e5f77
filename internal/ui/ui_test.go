package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sgbasaraner/libyee/internal/control"
	"github.com/sgbasaraner/libyee/internal/device"
	"github.com/sgbasaraner/libyee/internal/discovery"
)

func testDevices() []*device.Descriptor {
	return []*device.Descriptor{
		{
			ID:         "0x01",
			Model:      "color",
			Name:       "desk",
			Address:    "10.0.0.1:55443",
			Power:      device.PowerOn,
			Brightness: 80,
			ColorMode:  device.TemperatureMode{Kelvin: 4000},
		},
		{
			ID:      "0x02",
			Model:   "mono",
			Address: "10.0.0.2:55443",
		},
	}
}

func TestRenderDeviceListPlain(t *testing.T) {
	out := RenderDeviceListPlain(testDevices(), map[string]string{"0x01": "study"})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "ID") {
		t.Errorf("header line = %q", lines[0])
	}
	for _, want := range []string{"0x01", "study", "desk", "10.0.0.1:55443", "on", "80%", "ct 4000K"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("row %q missing %q", lines[1], want)
		}
	}
	if !strings.Contains(lines[2], "off") || !strings.Contains(lines[2], "-") {
		t.Errorf("row %q should show off and placeholders", lines[2])
	}
}

func TestRenderDeviceList(t *testing.T) {
	out := RenderDeviceList(testDevices(), nil)
	for _, want := range []string{"NICKNAME", "0x01", "0x02", "10.0.0.2:55443"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}

	if empty := RenderDeviceList(nil, nil); !strings.Contains(empty, "No lights found") {
		t.Errorf("empty list = %q", empty)
	}
}

func TestTroubleshootingFor(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    string
		wantNil bool
	}{
		{"io", &control.CallError{Kind: control.ErrIO}, "LAN Control", false},
		{"unsupported", &control.CallError{Kind: control.ErrUnsupportedMethod}, "does not advertise", false},
		{"response", &control.CallError{Kind: control.ErrResponse, Code: -1}, "rejected", false},
		{"not found", discovery.ErrDeviceNotFound, "yee scan", false},
		{"other", errors.New("boom"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tips := TroubleshootingFor(tt.err)
			if tt.wantNil {
				if tips != nil {
					t.Errorf("TroubleshootingFor() = %v, want nil", tips)
				}
				return
			}
			if !strings.Contains(strings.Join(tips, "\n"), tt.want) {
				t.Errorf("TroubleshootingFor() = %v, want a tip containing %q", tips, tt.want)
			}
		})
	}
}

func TestResultDetailsSorted(t *testing.T) {
	r := NewSuccessResult("Done", map[string]string{"Zeta": "1", "Alpha": "2"}).SetWidth(80)
	out := r.Render()

	if strings.Index(out, "Alpha") > strings.Index(out, "Zeta") {
		t.Errorf("details not sorted:\n%s", out)
	}
}

func TestResultRender(t *testing.T) {
	tests := []struct {
		name   string
		result *Result
		want   []string
	}{
		{"success", NewSuccessResult("Power set", map[string]string{"Light": "desk"}), []string{SuccessMarker, "SUCCESS", "Power set", "Light:", "desk"}},
		{"warning", NewWarningResult("No lights answered", map[string]string{"Hint": "check LAN Control"}), []string{WarningMarker, "WARNING", "Hint:"}},
		{"failure", NewFailureResult("Toggle failed", errors.New("connection refused"), []string{"Is the light powered?"}), []string{FailureMarker, "FAILED", "Error: connection refused", "Troubleshooting:", "Is the light powered?"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.result.SetWidth(80).Render()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("Render() missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestRenderCommandHeader(t *testing.T) {
	out := RenderCommandHeader(HeaderConfig{
		Title:   "Discovery",
		Command: "yee scan",
		Params:  map[string]string{"Timeout": "3s", "Policy": "count 2"},
		Width:   80,
	})

	for _, want := range []string{"DISCOVERY", "yee scan", "Policy:", "count 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("header missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Policy") > strings.Index(out, "Timeout") {
		t.Errorf("params not sorted:\n%s", out)
	}
}

func TestSpinnerModel_QuitsWhenTaskEnds(t *testing.T) {
	taskErr := errors.New("socket closed")
	m := newSpinnerModel(context.Background(), "Searching for lights", func(context.Context) error {
		return taskErr
	})

	if view := m.View(); !strings.Contains(view, "Searching for lights") {
		t.Errorf("View() = %q, want the label", view)
	}

	msg := m.run()
	next, cmd := m.Update(msg)
	if cmd == nil {
		t.Fatal("Update(taskDoneMsg) returned no command, want tea.Quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("Update(taskDoneMsg) command = %T, want tea.QuitMsg", cmd())
	}

	done := next.(spinnerModel)
	if !errors.Is(done.err, taskErr) {
		t.Errorf("err = %v, want %v", done.err, taskErr)
	}
	if done.View() != "" {
		t.Errorf("View() after completion = %q, want empty", done.View())
	}
}

func TestSpinnerModel_CtrlCCancelsTask(t *testing.T) {
	started := make(chan struct{})
	m := newSpinnerModel(context.Background(), "Searching", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})

	result := make(chan tea.Msg, 1)
	go func() { result <- m.run() }()
	<-started

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd != nil {
		t.Errorf("Update(ctrl+c) should wait for the task, got a command")
	}

	select {
	case msg := <-result:
		final, _ := next.Update(msg)
		if !errors.Is(final.(spinnerModel).err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", final.(spinnerModel).err)
		}
	case <-time.After(time.Second):
		t.Fatal("task was not cancelled")
	}
}

func TestSpin_RunsInlineWithoutTerminal(t *testing.T) {
	if IsInteractive() {
		t.Skip("stdout is a terminal")
	}

	ran := false
	err := Spin(context.Background(), "Searching", func(context.Context) error {
		ran = true
		return nil
	})
	if err != nil || !ran {
		t.Errorf("Spin() = %v, ran = %v; want nil, true", err, ran)
	}
}
