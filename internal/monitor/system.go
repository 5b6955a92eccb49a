package monitor

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

// SystemMetrics holds host-wide figures read on the machine running asrm.
type SystemMetrics struct {
	Hostname    string        `json:"hostname" yaml:"hostname"`
	Platform    string        `json:"platform" yaml:"platform"`
	KernelArch  string        `json:"kernel_arch" yaml:"kernel_arch"`
	TotalMemMB  float64       `json:"total_mem_mb" yaml:"total_mem_mb"`
	FreeMemMB   float64       `json:"free_mem_mb" yaml:"free_mem_mb"`
	TotalMemory float64       `json:"mem_used_percent" yaml:"mem_used_percent"`
	LoadAvg1    float64       `json:"load1" yaml:"load1"`
	LoadAvg5    float64       `json:"load5" yaml:"load5"`
	LoadAvg15   float64       `json:"load15" yaml:"load15"`
	NumProcs    uint64        `json:"procs" yaml:"procs"`
	Uptime      time.Duration `json:"uptime" yaml:"uptime"`
}

// GetSystemMetrics reads system-wide metrics. Figures that cannot be read
// are left at zero; the first failure is returned alongside.
func GetSystemMetrics(ctx context.Context) (*SystemMetrics, error) {
	m := &SystemMetrics{}
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		m.TotalMemMB = float64(vm.Total) / 1024 / 1024
		m.FreeMemMB = float64(vm.Available) / 1024 / 1024
		m.TotalMemory = vm.UsedPercent
	} else {
		keep(err)
	}

	if avg, err := load.AvgWithContext(ctx); err == nil {
		m.LoadAvg1, m.LoadAvg5, m.LoadAvg15 = avg.Load1, avg.Load5, avg.Load15
	} else {
		keep(err)
	}

	if info, err := host.InfoWithContext(ctx); err == nil {
		m.Hostname = info.Hostname
		m.Platform = info.Platform + " " + info.PlatformVersion
		m.KernelArch = info.KernelArch
		m.NumProcs = info.Procs
		m.Uptime = time.Duration(info.Uptime) * time.Second
	} else {
		keep(err)
	}

	return m, firstErr
}
