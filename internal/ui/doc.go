// Package ui renders the terminal output of the yee CLI.
//
// Components are "run once and print": a header before discovery, a
// Result box after a command completes, and a device table for discovery
// results. Spin keeps a Bubble Tea spinner on screen while a search runs.
// Everything is styled with Lipgloss; when stdout is not a terminal (see
// IsInteractive) commands print plain text instead so the output can be
// piped.
//
// Example:
//
//	fmt.Println(ui.RenderCommandHeader(ui.HeaderConfig{
//	    Title:   "Discovery",
//	    Command: "yee scan --count 2",
//	    Params:  map[string]string{"Policy": "count 2"},
//	}))
//
//	var devices []*device.Descriptor
//	err := ui.Spin(ctx, "Searching for lights", func(ctx context.Context) error {
//	    var err error
//	    devices, err = searcher.Search(ctx, discovery.Duration(3*time.Second))
//	    return err
//	})
//	if err != nil {
//	    fmt.Println(ui.NewFailureResult("Discovery failed", err, ui.TroubleshootingFor(err)).Render())
//	    return err
//	}
//	fmt.Println(ui.RenderDeviceList(devices, nil))
//
// # Logging Integration
//
// Logging is controlled by the YEE_LOG_LEVEL environment variable. When it
// is unset zap stays silent so the curated output is the only thing printed.
package ui
