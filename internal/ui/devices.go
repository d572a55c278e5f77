package ui

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sgbasaraner/libyee/internal/control"
	"github.com/sgbasaraner/libyee/internal/device"
	"github.com/sgbasaraner/libyee/internal/discovery"
)

var deviceColumns = []string{"ID", "NICKNAME", "NAME", "MODEL", "ADDRESS", "POWER", "BRIGHT", "MODE"}

func deviceRow(d *device.Descriptor, nicknames map[string]string) []string {
	mode := "-"
	if d.ColorMode != nil {
		mode = d.ColorMode.String()
	}
	return []string{
		d.ID,
		orDash(nicknames[d.ID]),
		orDash(d.Name),
		orDash(d.Model),
		d.Address,
		d.Power.String(),
		fmt.Sprintf("%d%%", d.Brightness),
		mode,
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// RenderDeviceList renders discovered lights as a table. nicknames maps
// device ids to the user's aliases and may be nil.
func RenderDeviceList(devices []*device.Descriptor, nicknames map[string]string) string {
	if len(devices) == 0 {
		return TroubleshootingItemStyle.Render("No lights found.")
	}

	rows := make([][]string, 0, len(devices))
	for _, d := range devices {
		rows = append(rows, deviceRow(d, nicknames))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(PrimaryColor)).
		Headers(deviceColumns...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle.Padding(0, 1)
			}
			if col == 5 {
				if rows[row][col] == device.PowerOn.String() {
					return PowerOnStyle.Padding(0, 1)
				}
				return PowerOffStyle.Padding(0, 1)
			}
			return TableCellStyle.Padding(0, 1)
		})

	return t.Render()
}

// RenderDeviceListPlain renders the same columns tab-aligned without
// styling, for pipes and scripts.
func RenderDeviceListPlain(devices []*device.Descriptor, nicknames map[string]string) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(deviceColumns, "\t"))
	for _, d := range devices {
		fmt.Fprintln(w, strings.Join(deviceRow(d, nicknames), "\t"))
	}
	_ = w.Flush()
	return b.String()
}

// TroubleshootingFor returns tips matching the kind of a failed call
func TroubleshootingFor(err error) []string {
	kind, ok := control.KindOf(err)
	if !ok {
		if errors.Is(err, discovery.ErrDeviceNotFound) {
			return []string{
				"Run 'yee scan' to refresh the list of lights",
				"Check the light is powered and on the same network",
			}
		}
		return nil
	}

	switch kind {
	case control.ErrBadRequest:
		return []string{"Check the argument ranges with 'yee <command> --help'"}
	case control.ErrUnsupportedMethod:
		return []string{
			"This light does not advertise the command",
			"Background commands only work on lights with a second light source",
		}
	case control.ErrIO:
		return []string{
			"Make sure LAN Control is enabled in the Yeelight app",
			"The light may be unreachable or rate limiting connections",
			"Try increasing --read-timeout",
		}
	case control.ErrParse, control.ErrSynchronization:
		return []string{"The light sent an unexpected reply; retry the command"}
	case control.ErrResponse:
		return []string{"The light rejected the command; it may be off or in music mode"}
	}
	return nil
}
