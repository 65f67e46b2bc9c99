// Package virsh wraps one-shot virsh invocations.
package virsh

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/kubev2v/virt-harness/internal/models"
	"github.com/kubev2v/virt-harness/pkg/command"
)

const (
	StateRunning  = "running"
	StateShutOff  = "shut off"
	StatePaused   = "paused"
	StateShutdown = "in shutdown"
)

type Client struct {
	runner command.Runner
	binary string
	uri    string
}

func NewClient(runner command.Runner, binary, uri string) *Client {
	if binary == "" {
		binary = "virsh"
	}
	return &Client{runner: runner, binary: binary, uri: uri}
}

// WithRunner returns a copy of the client issuing commands through runner.
func (c *Client) WithRunner(runner command.Runner) *Client {
	cp := *c
	cp.runner = runner
	return &cp
}

func (c *Client) URI() string {
	return c.uri
}

// Do runs an arbitrary virsh subcommand.
func (c *Client) Do(ctx context.Context, subcommand string, args ...string) (models.CommandResult, error) {
	argv := make([]string, 0, len(args)+3)
	if c.uri != "" {
		argv = append(argv, "--connect", c.uri)
	}
	argv = append(argv, subcommand)
	argv = append(argv, args...)
	return c.runner.Run(ctx, c.binary, argv...)
}

func (c *Client) Version(ctx context.Context) (models.CommandResult, error) {
	return c.Do(ctx, "version")
}

func (c *Client) Domstate(ctx context.Context, domain string) (models.CommandResult, error) {
	return c.Do(ctx, "domstate", domain)
}

func (c *Client) Start(ctx context.Context, domain string) (models.CommandResult, error) {
	return c.Do(ctx, "start", domain)
}

func (c *Client) Destroy(ctx context.Context, domain string) (models.CommandResult, error) {
	return c.Do(ctx, "destroy", domain)
}

func (c *Client) Undefine(ctx context.Context, domain string, flags ...string) (models.CommandResult, error) {
	return c.Do(ctx, "undefine", append([]string{domain}, flags...)...)
}

func (c *Client) Define(ctx context.Context, xmlPath string) (models.CommandResult, error) {
	return c.Do(ctx, "define", xmlPath)
}

// DefineXML writes xml to a temporary file and defines it.
func (c *Client) DefineXML(ctx context.Context, xml string) (models.CommandResult, error) {
	f, err := os.CreateTemp("", "domain-*.xml")
	if err != nil {
		return models.CommandResult{}, fmt.Errorf("failed to write domain xml: %w", err)
	}
	defer os.Remove(f.Name())
	if _, err := f.WriteString(xml); err != nil {
		_ = f.Close()
		return models.CommandResult{}, fmt.Errorf("failed to write domain xml: %w", err)
	}
	if err := f.Close(); err != nil {
		return models.CommandResult{}, fmt.Errorf("failed to write domain xml: %w", err)
	}
	return c.Define(ctx, f.Name())
}

func (c *Client) DomBlkList(ctx context.Context, domain string) (models.CommandResult, error) {
	return c.Do(ctx, "domblklist", domain)
}

// State returns the trimmed domstate output.
func (c *Client) State(ctx context.Context, domain string) (string, error) {
	res, err := c.Domstate(ctx, domain)
	if err != nil {
		return "", err
	}
	if res.Failed() {
		return "", fmt.Errorf("failed to get state of %s: %s", domain, res)
	}
	return strings.TrimSpace(res.Stdout), nil
}

// WaitForState polls domstate until the domain reaches state or timeout
// expires. Failures of virsh itself are retried as well.
func (c *Client) WaitForState(ctx context.Context, domain, state string, timeout time.Duration) error {
	log := zap.S().Named("virsh").With("domain", domain)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 5 * time.Second

	last, err := backoff.Retry(ctx, func() (string, error) {
		current, err := c.State(ctx, domain)
		if err != nil {
			return "", err
		}
		if current != state {
			log.Debugw("waiting for domain state", "current", current, "wanted", state)
			return current, fmt.Errorf("domain %s is %q", domain, current)
		}
		return current, nil
	}, backoff.WithBackOff(b), backoff.WithMaxElapsedTime(timeout))
	if err != nil {
		return fmt.Errorf("domain %s did not reach state %q within %s (last %q): %w", domain, state, timeout, last, err)
	}
	return nil
}

// ParseBlkList returns target to source from domblklist output.
func ParseBlkList(out string) map[string]string {
	disks := make(map[string]string)
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 || fields[0] == "Target" || strings.HasPrefix(fields[0], "---") {
			continue
		}
		disks[fields[0]] = fields[1]
	}
	return disks
}

// TrimOutput drops the surrounding blank lines virsh adds to its answers.
func TrimOutput(out string) string {
	return strings.TrimSpace(out)
}
