package collector

import (
	"context"
	"fmt"

	"github.com/nao1215/llmctx/internal/model"
)

// StepNetwork is the name of the network collector step.
const StepNetwork = "network_details"

// NetworkCollector stores the raw interface listing in
// SystemInfo.NetworkDetails. The text is unmasked; redact it before
// display.
type NetworkCollector struct {
	env *Env
}

// NewNetworkCollector creates a network collector.
func NewNetworkCollector(env *Env) *NetworkCollector {
	return &NetworkCollector{env: env}
}

// Name returns the step name.
func (c *NetworkCollector) Name() string {
	return StepNetwork
}

// Do runs "ipconfig /all" on Windows and "ip addr" elsewhere, with stderr
// merged into the output. On failure the details hold the error text.
func (c *NetworkCollector) Do(ctx context.Context, info *model.SystemInfo) error {
	name, args := "ip", []string{"addr"}
	if c.env.isWindows() {
		name, args = "ipconfig", []string{"/all"}
	}

	res, err := c.env.Runner.Run(ctx, name, args...)
	if err != nil {
		c.env.logger().Debug("network listing failed", "command", name, "error", err)
		info.NetworkDetails = fmt.Sprintf("failed to read network details: %v", err)
		return ctx.Err()
	}
	info.NetworkDetails = res.Combined
	return ctx.Err()
}
