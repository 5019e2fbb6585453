// Package resources samples Go runtime and host usage and reports it periodically.
package resources

import (
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Usage represents current process and system resource usage
type Usage struct {
	AllocMB              int64   // Currently allocated heap
	SysMB                int64   // Memory obtained from the OS by the Go runtime
	Goroutines           int     // Number of goroutines
	GCCount              int64   // Completed GC cycles
	SystemMemUsedMB      int64   // Host memory in use
	SystemMemTotalMB     int64   // Host memory total
	SystemMemUsedPercent float64 // Host memory used percentage
	CPUUsagePercent      float64 // Host CPU usage percentage over the sample window
}

// Snapshot collects usage. cpuSample is the CPU measurement window; zero
// skips the CPU reading.
func Snapshot(cpuSample time.Duration) Usage {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	usage := Usage{
		AllocMB:    int64(m.Alloc / 1024 / 1024),
		SysMB:      int64(m.Sys / 1024 / 1024),
		Goroutines: runtime.NumGoroutine(),
		GCCount:    int64(m.NumGC),
	}

	if vmStat, err := mem.VirtualMemory(); err == nil {
		usage.SystemMemUsedMB = int64(vmStat.Used / 1024 / 1024)
		usage.SystemMemTotalMB = int64(vmStat.Total / 1024 / 1024)
		usage.SystemMemUsedPercent = vmStat.UsedPercent
	}

	if cpuSample > 0 {
		if cpuPercents, err := cpu.Percent(cpuSample, false); err == nil && len(cpuPercents) > 0 {
			usage.CPUUsagePercent = cpuPercents[0]
		}
	}

	return usage
}
