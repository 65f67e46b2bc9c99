package session

import (
	"strings"

	"github.com/kubev2v/virt-harness/internal/models"
)

// Dialect describes how to talk to one interactive tool.
type Dialect struct {
	Name   string
	Binary string
	Args   []string
	// BackendEnv is the environment variable selecting the tool backend.
	BackendEnv string
	// CommandPrefix is prepended to every command line. guestfish needs "-"
	// so that a failing command does not end a non-interactive session.
	CommandPrefix string
	Quit          string
	ErrorPrefixes []string
	// Launch is the command that boots the tool after drives were added.
	Launch string
	// AddDrive renders the command adding one drive. Nil means the tool
	// does not take drives.
	AddDrive func(d models.Drive) (string, []string)
}

type step struct {
	name string
	args []string
}

// Guestfish returns the dialect for a non-interactive guestfish reading
// commands from stdin.
func Guestfish(binary string) Dialect {
	if binary == "" {
		binary = "guestfish"
	}
	return Dialect{
		Name:          "guestfish",
		Binary:        binary,
		BackendEnv:    "LIBGUESTFS_BACKEND",
		CommandPrefix: "-",
		Quit:          "quit",
		ErrorPrefixes: []string{"libguestfs: error:", "guestfish:"},
		Launch:        "run",
		AddDrive: func(d models.Drive) (string, []string) {
			args := []string{d.Path}
			if d.Format != "" {
				args = append(args, "format:"+d.Format)
			}
			if d.Readonly {
				args = append(args, "readonly:true")
			}
			if d.Protocol != "" {
				args = append(args, "protocol:"+d.Protocol)
			}
			return "add-drive", args
		},
	}
}

// Virsh returns the dialect for the interactive virsh shell.
func Virsh(binary, uri string) Dialect {
	if binary == "" {
		binary = "virsh"
	}
	var args []string
	if uri != "" {
		args = []string{"--connect", uri}
	}
	return Dialect{
		Name:          "virsh",
		Binary:        binary,
		Args:          args,
		Quit:          "quit",
		ErrorPrefixes: []string{"error:"},
	}
}

// Sentinel is the command making the tool print marker on its own line.
func (d Dialect) Sentinel(marker string) string {
	return "echo " + marker
}

// Format renders one command line, quoting arguments the way guestfish and
// the virsh shell parse them.
func (d Dialect) Format(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, a := range args {
		parts = append(parts, Quote(a))
	}
	return strings.Join(parts, " ")
}

func (d Dialect) setup(cfg models.SessionConfig) []step {
	if cfg.SkipLaunch {
		return nil
	}
	var steps []step
	if cfg.AttachMethod != "" && d.Name == "guestfish" {
		steps = append(steps, step{name: "set-attach-method", args: []string{cfg.AttachMethod}})
	}
	if d.AddDrive != nil {
		for _, drive := range cfg.Drives {
			name, args := d.AddDrive(drive)
			steps = append(steps, step{name: name, args: args})
		}
	}
	if d.Launch != "" {
		steps = append(steps, step{name: d.Launch})
	}
	return steps
}

func (d Dialect) isError(line string) bool {
	for _, p := range d.ErrorPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// Quote wraps s in double quotes unless it only holds characters the tool
// shell passes through untouched.
func Quote(s string) string {
	if s != "" && strings.IndexFunc(s, unsafe) == -1 {
		return s
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func unsafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("/_-.:,=+@%[]", r)
}
