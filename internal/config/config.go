package config

import (
	"path/filepath"
	"time"
)

//go:generate go run github.com/ecordell/optgen -output zz_generated.configuration.go . Configuration Server Harness Tools Libguestfs VSphere

const databaseFile = "virt-harness.duckdb"

type Configuration struct {
	Server     Server     `debugmap:"visible"`
	Harness    Harness    `debugmap:"visible"`
	Tools      Tools      `debugmap:"visible"`
	Libguestfs Libguestfs `debugmap:"visible"`
	VSphere    VSphere    `debugmap:"visible"`
	LogFormat  string     `debugmap:"visible" default:"console"`
	LogLevel   string     `debugmap:"visible" default:"info"`
}

type Server struct {
	HTTPPort   int    `debugmap:"visible" default:"8000"`
	ServerMode string `debugmap:"visible" default:"dev"`
}

type Harness struct {
	NumWorkers int `debugmap:"visible" default:"1"`
	// DataFolder holds the run database. Empty keeps runs in memory.
	DataFolder      string        `debugmap:"visible"`
	WorkDir         string        `debugmap:"visible"`
	CommandTimeout  time.Duration `debugmap:"visible" default:"10m"`
	SessionTimeout  time.Duration `debugmap:"visible" default:"5m"`
	ScenarioTimeout time.Duration `debugmap:"visible" default:"30m"`
}

// Tools are the binaries under test. Bare names are looked up in PATH.
type Tools struct {
	Guestfish string `debugmap:"visible" default:"guestfish"`
	Virsh     string `debugmap:"visible" default:"virsh"`
	VirshURI  string `debugmap:"visible" default:"qemu:///system"`
	QemuImg   string `debugmap:"visible" default:"qemu-img"`
	V2V       string `debugmap:"visible" default:"virt-v2v"`
	Nbdkit    string `debugmap:"visible" default:"nbdkit"`
}

type Libguestfs struct {
	Backend string `debugmap:"visible" default:"direct"`
}

// VSphere is the conversion source. It is optional: an empty URL disables
// the checkpoints that need it.
type VSphere struct {
	URL      string `debugmap:"visible"`
	Username string `debugmap:"visible"`
	Password string `debugmap:"sensitive"`
	Insecure bool   `debugmap:"visible" default:"true"`
	// Datacenter may be empty when the inventory holds a single one.
	Datacenter string `debugmap:"visible"`
	// SourceURI is the libvirt URI virt-v2v reads from (-ic), e.g.
	// vpx://user@vcenter/Datacenter/cluster/host?no_verify=1.
	SourceURI string `debugmap:"visible"`
}

func (v VSphere) Enabled() bool {
	return v.URL != ""
}

// DatabasePath returns the DuckDB file, or ":memory:" without a data folder.
func (h Harness) DatabasePath() string {
	if h.DataFolder == "" {
		return ":memory:"
	}
	return filepath.Join(h.DataFolder, databaseFile)
}
