package omnetup

import (
	"context"
	"fmt"
)

// runState carries values produced mid-chain that later steps consume.
type runState struct {
	Prefix string // environment installation prefix, resolved after provisioning
}

// Step is one stage of the linear workflow chain.
type Step struct {
	Name string
	Run  func(ctx context.Context, cfg *Config, st *runState) error
}

// ensurePrefix resolves the environment prefix once and caches it.
func ensurePrefix(ctx context.Context, cfg *Config, st *runState) error {
	if st.Prefix != "" {
		return nil
	}
	prefix, err := envPrefix(ctx, cfg)
	if err != nil {
		return err
	}
	debugf("Environment prefix: %s\n", prefix)
	st.Prefix = prefix
	return nil
}

// workflowSteps is the full chain. The requirements step must follow unpack:
// the manifest it installs lives inside the extracted tree.
func workflowSteps() []Step {
	return []Step{
		{Name: "preflight", Run: func(ctx context.Context, cfg *Config, st *runState) error {
			return preflight(cfg)
		}},
		{Name: "fetch", Run: func(ctx context.Context, cfg *Config, st *runState) error {
			return fetchArchive(ctx, cfg)
		}},
		{Name: "provision", Run: func(ctx context.Context, cfg *Config, st *runState) error {
			return provisionEnv(ctx, cfg)
		}},
		{Name: "unpack", Run: func(ctx context.Context, cfg *Config, st *runState) error {
			return unpackArchive(cfg)
		}},
		{Name: "requirements", Run: func(ctx context.Context, cfg *Config, st *runState) error {
			return installTreeRequirements(ctx, cfg)
		}},
		{Name: "configure", Run: func(ctx context.Context, cfg *Config, st *runState) error {
			if err := ensurePrefix(ctx, cfg, st); err != nil {
				return err
			}
			return runConfigure(ctx, cfg, st.Prefix)
		}},
		{Name: "patch", Run: func(ctx context.Context, cfg *Config, st *runState) error {
			return patchMakefile(cfg)
		}},
		{Name: "build", Run: func(ctx context.Context, cfg *Config, st *runState) error {
			if err := ensurePrefix(ctx, cfg, st); err != nil {
				return err
			}
			return runBuild(ctx, cfg, st.Prefix)
		}},
	}
}

// runPipeline executes the steps in order, fail-fast: the first error aborts
// the remaining chain, with no rollback of completed steps.
func runPipeline(ctx context.Context, cfg *Config, steps []Step) error {
	st := &runState{}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("aborted before step %s: %w", step.Name, err)
		}
		debugf("Running step: %s\n", step.Name)
		if err := step.Run(ctx, cfg, st); err != nil {
			return fmt.Errorf("step %s: %w", step.Name, err)
		}
	}
	return nil
}
