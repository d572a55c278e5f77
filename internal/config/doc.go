// Package config provides user configuration management for yee.
//
// This package manages a YAML-based configuration file that stores user-defined
// metadata for lights (nicknames, last known addresses) and CLI preferences.
// The configuration follows OS-specific conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/yee/config.yaml or $HOME/.config/yee/config.yaml
//   - macOS: $HOME/.config/yee/config.yaml
//   - Windows: %LOCALAPPDATA%\yee\config.yaml
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := registry.SetDeviceNickname("0x000000000015243f", "desk"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// "desk" now resolves to the device id
//	id, _ := registry.ResolveDevice("desk")
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File writes are protected by a mutex and go through a temporary file.
// Registry values themselves are not synchronized.
package config
