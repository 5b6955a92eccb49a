package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lxp-git/android-system-resource-monitor/internal/config"
	"github.com/lxp-git/android-system-resource-monitor/internal/daemon"
	"github.com/lxp-git/android-system-resource-monitor/internal/monitor"
	"github.com/lxp-git/android-system-resource-monitor/internal/registry"
	"github.com/lxp-git/android-system-resource-monitor/internal/shell"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show root access, host metrics and daemon state",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := config.Global
	ctx := context.Background()

	executor := shell.New(shell.Config{
		Wrapper:     cfg.Capture.Shell,
		WrapperArgs: cfg.Capture.ShellArgs,
		Timeout:     cfg.Capture.Timeout,
	})

	fmt.Println("╔══════════════════════════════════════════╗")
	fmt.Println("║     asrm - Android system resource mon   ║")
	fmt.Println("╚══════════════════════════════════════════╝")
	fmt.Println()

	if executor.RootAvailable(ctx) {
		fmt.Printf("Root:       available (%s)\n", cfg.Capture.Shell)
	} else {
		fmt.Printf("Root:       not available (%s)\n", cfg.Capture.Shell)
	}

	pidFile := cfg.Daemon.PIDFile
	if pidFile == "" {
		pidFile = daemon.DefaultPIDFile()
	}
	if pid, ok := daemon.Running(pidFile); ok {
		fmt.Printf("Daemon:     Running (PID: %d)\n", pid)
	} else {
		fmt.Println("Daemon:     Not running")
	}
	fmt.Println()

	metrics, err := monitor.GetSystemMetrics(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "System metrics unavailable: %v\n", err)
	}
	if metrics != nil {
		fmt.Println("System Metrics:")
		fmt.Printf("  Host:         %s (%s, %s)\n", metrics.Hostname, metrics.Platform, metrics.KernelArch)
		fmt.Printf("  Memory:       %.1f%% (%.0f MB / %.0f MB)\n",
			metrics.TotalMemory, metrics.TotalMemMB-metrics.FreeMemMB, metrics.TotalMemMB)
		fmt.Printf("  Load Average: %.2f, %.2f, %.2f\n",
			metrics.LoadAvg1, metrics.LoadAvg5, metrics.LoadAvg15)
		fmt.Printf("  Processes:    %d\n", metrics.NumProcs)
		fmt.Printf("  Uptime:       %s\n", metrics.Uptime)
		fmt.Println()
	}

	if cfg.Identity.Enabled {
		reg, err := registry.Load(ctx, registry.Config{
			PackagesList: cfg.Identity.PackagesList,
			PasswdFile:   cfg.Identity.PasswdFile,
			CatalogFile:  cfg.Identity.CatalogFile,
		}, executor)
		apps := reg.Apps()
		fmt.Println("Application Registry:")
		fmt.Printf("  Applications: %d (%d labeled)\n", len(apps), labeled(apps))
		if err != nil {
			fmt.Printf("  Incomplete:   %v\n", err)
		}
		fmt.Println()
	}

	fmt.Println("Configuration:")
	fmt.Printf("  Capture:          %s %v (%d iteration(s), timeout %s)\n",
		cfg.Capture.Shell, cfg.Capture.ShellArgs, cfg.Capture.Iterations, cfg.Capture.Timeout)
	fmt.Printf("  Refresh Interval: %s\n", cfg.Capture.RefreshInterval)
	fmt.Printf("  Identity:         %v (%d workers)\n", cfg.Identity.Enabled, cfg.Identity.Workers)
	fmt.Printf("  Packages List:    %s\n", cfg.Identity.PackagesList)
	fmt.Printf("  Catalog File:     %s\n", orNone(cfg.Identity.CatalogFile))
	fmt.Printf("  CPU Thresholds:   %.1f%% warn, %.1f%% high\n", cfg.Display.CPUWarn, cfg.Display.CPUHigh)
	fmt.Printf("  Log File:         %s\n", orNone(cfg.Notifications.LogFile))
	fmt.Printf("  Journal File:     %s\n", orNone(cfg.Notifications.JournalFile))

	return nil
}

func labeled(apps []registry.App) int {
	n := 0
	for _, a := range apps {
		if a.Label != "" {
			n++
		}
	}
	return n
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
