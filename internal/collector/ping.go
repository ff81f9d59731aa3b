package collector

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/llmctx/internal/model"
)

// StepPing is the name of the ping collector step.
const StepPing = "ping_test"

// Ping defaults.
const (
	// DefaultPingTarget is the host pinged when none is configured.
	DefaultPingTarget = "google.com"
	// DefaultPingCount is the number of echo requests sent.
	DefaultPingCount = 4
	// DefaultPingTimeout bounds the whole ping command.
	DefaultPingTimeout = 10 * time.Second
)

// PingCollector fills SystemInfo.Ping.
type PingCollector struct {
	env     *Env
	target  string
	count   int
	timeout time.Duration
}

// PingOption configures a PingCollector.
type PingOption func(*PingCollector)

// WithPingTarget sets the host to ping.
func WithPingTarget(target string) PingOption {
	return func(c *PingCollector) {
		if target != "" {
			c.target = target
		}
	}
}

// WithPingCount sets the number of echo requests.
func WithPingCount(count int) PingOption {
	return func(c *PingCollector) {
		if count > 0 {
			c.count = count
		}
	}
}

// WithPingTimeout sets the deadline for the ping command.
func WithPingTimeout(timeout time.Duration) PingOption {
	return func(c *PingCollector) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// NewPingCollector creates a ping collector.
func NewPingCollector(env *Env, opts ...PingOption) *PingCollector {
	c := &PingCollector{
		env:     env,
		target:  DefaultPingTarget,
		count:   DefaultPingCount,
		timeout: DefaultPingTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the step name.
func (c *PingCollector) Name() string {
	return StepPing
}

// Do pings the target. The count flag is -n on Windows and -c elsewhere.
//
// A zero exit status is a success and the log is the ping output. Any
// failure, including the timeout, is a fail and the log holds the error
// followed by whatever the command printed.
func (c *PingCollector) Do(ctx context.Context, info *model.SystemInfo) error {
	countFlag := "-c"
	if c.env.isWindows() {
		countFlag = "-n"
	}

	pingCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.env.Runner.Run(pingCtx, "ping", countFlag, strconv.Itoa(c.count), c.target)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(pingCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("ping %s timed out after %s", c.target, c.timeout)
		}
		log := err.Error()
		if out := strings.TrimSpace(res.Combined); out != "" {
			log += "\n" + out
		}
		info.Ping = model.PingTest{Status: model.PingStatusFail, Log: log}
		return nil
	}

	info.Ping = model.PingTest{Status: model.PingStatusSuccess, Log: res.Combined}
	return nil
}
