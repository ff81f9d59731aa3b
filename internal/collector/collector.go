package collector

import (
	"context"
	"time"

	"github.com/nao1215/llmctx/internal/model"
	"github.com/nao1215/llmctx/internal/pipeline"
)

// DefaultConcurrency is the number of collectors run at the same time.
const DefaultConcurrency = 4

// Settings tunes a collection run.
type Settings struct {
	// PingTarget is the host used for the connectivity check.
	PingTarget string

	// PingCount is the number of echo requests.
	PingCount int

	// PingTimeout bounds the ping command.
	PingTimeout time.Duration

	// Concurrency is the number of collectors run at the same time.
	Concurrency int
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		PingTarget:  DefaultPingTarget,
		PingCount:   DefaultPingCount,
		PingTimeout: DefaultPingTimeout,
		Concurrency: DefaultConcurrency,
	}
}

// Steps returns one collector per SystemInfo section, in document order.
func Steps(env *Env, s Settings) []pipeline.Step {
	return []pipeline.Step{
		NewOSCollector(env),
		NewHardwareCollector(env),
		NewGPUCollector(env),
		NewPythonCollector(env),
		NewNetworkCollector(env),
		NewPingCollector(env,
			WithPingTarget(s.PingTarget),
			WithPingCount(s.PingCount),
			WithPingTimeout(s.PingTimeout),
		),
	}
}

// CollectAll runs every collector and returns the gathered facts.
//
// The returned SystemInfo is always usable: sections whose collector did
// not finish keep their placeholders. The error is non-nil only when ctx
// was cancelled.
func CollectAll(ctx context.Context, env *Env, s Settings) (*model.SystemInfo, error) {
	p := pipeline.New(
		pipeline.WithLogger(env.logger()),
		pipeline.WithConcurrency(s.Concurrency),
	)
	p.AddSteps(Steps(env, s)...)

	info := model.NewSystemInfo()
	if err := p.Execute(ctx, info); err != nil {
		return info, err
	}
	return info, nil
}
