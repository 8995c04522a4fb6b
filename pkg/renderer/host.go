package renderer

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

// HostInfo describes the machine doing the rendering
type HostInfo struct {
	CPUModel     string  `json:"cpuModel"`
	LogicalCores int     `json:"logicalCores"`
	ClockGHz     float64 `json:"clockGHz"`
	TotalRAMGB   uint64  `json:"totalRamGB"`
	GoMaxProcs   int     `json:"goMaxProcs"`
}

// DefaultNumWorkers returns the host's logical CPU count, falling back to runtime.NumCPU
func DefaultNumWorkers() int {
	count, err := cpu.Counts(true)
	if err != nil || count <= 0 {
		return runtime.NumCPU()
	}
	return count
}

// GetHostInfo queries CPU and memory details
func GetHostInfo() (HostInfo, error) {
	info := HostInfo{
		LogicalCores: DefaultNumWorkers(),
		GoMaxProcs:   runtime.GOMAXPROCS(0),
	}

	cpuInfo, err := cpu.Info()
	if err != nil {
		return info, fmt.Errorf("reading cpu info: %w", err)
	}
	if len(cpuInfo) > 0 {
		info.CPUModel = cpuInfo[0].ModelName
		info.ClockGHz = cpuInfo[0].Mhz / 1000 // MHz to GHz
	}

	memInfo, err := mem.VirtualMemory()
	if err != nil {
		return info, fmt.Errorf("reading memory info: %w", err)
	}
	info.TotalRAMGB = memInfo.Total / (1024 * 1024 * 1024)

	return info, nil
}

// String formats the host info for logs
func (h HostInfo) String() string {
	return fmt.Sprintf("%s (%d logical cores @ %.2f GHz, %d GB RAM, GOMAXPROCS=%d)",
		h.CPUModel, h.LogicalCores, h.ClockGHz, h.TotalRAMGB, h.GoMaxProcs)
}
