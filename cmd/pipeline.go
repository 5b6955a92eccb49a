package cmd

import (
	"context"
	"fmt"

	"github.com/lxp-git/android-system-resource-monitor/internal/config"
	"github.com/lxp-git/android-system-resource-monitor/internal/identity"
	"github.com/lxp-git/android-system-resource-monitor/internal/monitor"
	"github.com/lxp-git/android-system-resource-monitor/internal/notification"
	"github.com/lxp-git/android-system-resource-monitor/internal/output"
	"github.com/lxp-git/android-system-resource-monitor/internal/procmeta"
	"github.com/lxp-git/android-system-resource-monitor/internal/registry"
	"github.com/lxp-git/android-system-resource-monitor/internal/shell"
	"github.com/lxp-git/android-system-resource-monitor/internal/topparse"
)

// pipeline is the capture, parse and attribution chain shared by the
// commands.
type pipeline struct {
	executor   *shell.Executor
	resolver   *identity.Resolver
	monitor    *monitor.Monitor
	classifier *monitor.Classifier
}

func newPipeline(ctx context.Context, cfg *config.Config, notifier *notification.Notifier) *pipeline {
	p := &pipeline{
		executor: shell.New(shell.Config{
			Wrapper:     cfg.Capture.Shell,
			WrapperArgs: cfg.Capture.ShellArgs,
			Timeout:     cfg.Capture.Timeout,
		}),
		classifier: monitor.NewClassifier(cfg.Display.CPUWarn, cfg.Display.CPUHigh),
	}

	var enricher topparse.Enricher
	if cfg.Identity.Enabled {
		reg, err := registry.Load(ctx, registry.Config{
			PackagesList: cfg.Identity.PackagesList,
			PasswdFile:   cfg.Identity.PasswdFile,
			CatalogFile:  cfg.Identity.CatalogFile,
		}, p.executor)
		if err != nil {
			notifier.Warn(fmt.Sprintf("Identity sources incomplete: %v", err))
		}
		notifier.Logger().Debug().
			Int("apps", reg.Len()).
			Str("packages_list", cfg.Identity.PackagesList).
			Str("catalog", cfg.Identity.CatalogFile).
			Msg("registry loaded")

		p.resolver = identity.NewResolver(reg, procmeta.NewSource(cfg.Identity.CacheSize, cfg.Identity.CacheTTL))
		enricher = p.resolver
	}

	p.monitor = monitor.New(p.executor, enricher, monitor.Config{
		Iterations: cfg.Capture.Iterations,
		Interval:   cfg.Capture.RefreshInterval,
		Workers:    cfg.Identity.Workers,
	})
	return p
}

// display returns the label lookup, or nil when attribution is off.
func (p *pipeline) display() output.DisplayFunc {
	if p.resolver == nil {
		return nil
	}
	return p.resolver.DisplayLookup
}
