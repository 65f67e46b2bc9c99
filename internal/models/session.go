package models

// Drive is a disk image attached to an interactive tool session.
type Drive struct {
	Path     string
	Format   string
	Readonly bool
	// Protocol is an optional network protocol (nbd, iscsi, ...) for Path.
	Protocol string
}

// SessionConfig configures the launch of an interactive tool session.
type SessionConfig struct {
	Drives []Drive
	// Backend is exported as LIBGUESTFS_BACKEND when set (direct, libvirt, ...).
	Backend string
	// AttachMethod is passed to set-attach-method before launch when set.
	AttachMethod string
	// Env holds extra environment variables for the tool process.
	Env map[string]string
	// SkipLaunch opens the shell without running the appliance.
	SkipLaunch bool
}
