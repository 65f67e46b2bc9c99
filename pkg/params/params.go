// Package params holds the flat, string-keyed test parameters passed down a
// checkpoint run.
//
// Params is immutable: With and Merge return copies. The only place a run
// derives new parameters is the sweep iterator in pkg/checkpoint.
package params

import (
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	srvErrors "github.com/kubev2v/virt-harness/pkg/errors"
)

// Well known keys shared between the dispatcher, the preparer and the suites.
const (
	KeyCheckpoint    = "checkpoint"
	KeyStatusError   = "status_error"
	KeyImageFormat   = "image_format"
	KeyImageSize     = "image_size"
	KeyImageName     = "image_name"
	KeyPartitionType = "partition_type"
	KeyFSType        = "fs_type"
	KeyMountPoint    = "mount_point"
	KeyAddRef        = "gf_add_ref"
	KeyAddReadonly   = "gf_add_readonly"
)

type Params struct {
	m map[string]string
}

func New(m map[string]string) Params {
	return Params{m: maps.Clone(m)}
}

func (p Params) Lookup(key string) (string, bool) {
	v, ok := p.m[key]
	return v, ok
}

func (p Params) Get(key string) string {
	return p.m[key]
}

// String returns the value of key or def when the key is unset or empty.
func (p Params) String(key, def string) string {
	if v := p.m[key]; v != "" {
		return v
	}
	return def
}

// Bool accepts the yes/no spelling used by the cartesian cfg files as well as
// anything strconv.ParseBool understands.
func (p Params) Bool(key string, def bool) bool {
	v, ok := p.m[key]
	if !ok || v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "yes", "y", "on":
		return true
	case "no", "n", "off":
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func (p Params) Int(key string, def int) int {
	i, err := strconv.Atoi(p.m[key])
	if err != nil {
		return def
	}
	return i
}

func (p Params) Duration(key string, def time.Duration) time.Duration {
	v := p.m[key]
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// bare numbers are seconds
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

// Strings splits a space separated value.
func (p Params) Strings(key string) []string {
	return strings.Fields(p.m[key])
}

func (p Params) Keys() []string {
	return slices.Sorted(maps.Keys(p.m))
}

func (p Params) Len() int {
	return len(p.m)
}

// Map returns a copy of the underlying values.
func (p Params) Map() map[string]string {
	return maps.Clone(p.m)
}

func (p Params) With(key, value string) Params {
	m := maps.Clone(p.m)
	if m == nil {
		m = make(map[string]string, 1)
	}
	m[key] = value
	return Params{m: m}
}

// Merge returns a copy of p overlaid with the values of other.
func (p Params) Merge(other Params) Params {
	m := maps.Clone(p.m)
	if m == nil {
		m = make(map[string]string, len(other.m))
	}
	maps.Copy(m, other.m)
	return Params{m: m}
}

// Require returns a MissingParameterError naming every unset key.
func (p Params) Require(keys ...string) error {
	var missing []string
	for _, k := range keys {
		if p.m[k] == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return srvErrors.NewMissingParameterError(missing...)
	}
	return nil
}

// ExpectFailure reads the status_error flag.
func (p Params) ExpectFailure() bool {
	return p.Bool(KeyStatusError, false)
}
