// Package config defines the configuration of virt-harness.
//
// Configuration is organized into sections and uses optgen to generate
// functional option helpers (zz_generated.configuration.go).
//
// # Configuration Structure
//
//	Configuration
//	├── Server         - HTTP server for the run history API
//	├── Harness        - Workers, data folder, timeouts
//	├── Tools          - Paths of the binaries under test
//	├── Libguestfs     - Appliance backend
//	├── VSphere        - Optional conversion source
//	├── LogFormat      - console or json
//	└── LogLevel       - Logging verbosity
//
// # Harness Configuration
//
//	┌─────────────────┬─────────┬──────────────────────────────────────────┐
//	│ Field           │ Default │ Description                              │
//	├─────────────────┼─────────┼──────────────────────────────────────────┤
//	│ NumWorkers      │ 1       │ Scenarios run in parallel                │
//	│ DataFolder      │ ""      │ DuckDB folder, in memory when empty      │
//	│ WorkDir         │ ""      │ Parent of per run scratch directories    │
//	│ CommandTimeout  │ 10m     │ One-shot command timeout                 │
//	│ SessionTimeout  │ 5m      │ Interactive command timeout              │
//	│ ScenarioTimeout │ 30m     │ Used when a scenario sets no timeout     │
//	└─────────────────┴─────────┴──────────────────────────────────────────┘
//
// # Tools Configuration
//
// Guestfish, Virsh, QemuImg, V2V and Nbdkit default to the bare binary name.
// VirshURI defaults to qemu:///system.
//
// # VSphere Configuration
//
// An empty URL disables the vSphere checkpoints; they report skip. Password
// is tagged debugmap:"sensitive" and never shows up in DebugMap output.
//
// # Code Generation
//
//	//go:generate go run github.com/ecordell/optgen -output zz_generated.configuration.go . Configuration Server Harness Tools Libguestfs VSphere
//
// # Usage Example
//
//	cfg := config.NewConfigurationWithOptionsAndDefaults(
//	    config.WithHarness(*config.NewHarnessWithOptionsAndDefaults(
//	        config.WithNumWorkers(2),
//	    )),
//	    config.WithLogLevel("debug"),
//	)
//	zap.S().Infow("configuration loaded", "config", cfg.DebugMap())
package config
