// Package device describes the hardware the experiments run on.
package device

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
	"github.com/rs/zerolog"
)

// GPU is an accelerator found by the CUDA driver.
type GPU struct {
	Index    int
	Name     string
	Memory   int64
	Major    int
	Minor    int
	ClockKHz int
}

// Info summarizes the host.
type Info struct {
	CPU           string
	PhysicalCores int
	LogicalCores  int
	AVX2          bool
	AVX512        bool
	GPUs          []GPU
}

// Probe inspects the CPU and, unless noCUDA is set, the CUDA devices.
func Probe(noCUDA bool) (Info, error) {
	info := Info{
		CPU:           cpuid.CPU.BrandName,
		PhysicalCores: cpuid.CPU.PhysicalCores,
		LogicalCores:  cpuid.CPU.LogicalCores,
		AVX2:          cpuid.CPU.Supports(cpuid.AVX2),
		AVX512:        cpuid.CPU.Supports(cpuid.AVX512F, cpuid.AVX512DQ),
	}
	if noCUDA {
		return info, nil
	}
	gpus, err := cudaDevices()
	info.GPUs = gpus
	return info, err
}

// Threads is the default worker count, one per logical core.
func (i Info) Threads() int {
	if i.LogicalCores > 0 {
		return i.LogicalCores
	}
	return runtime.NumCPU()
}

// MarshalZerologObject logs the description as fields.
func (i Info) MarshalZerologObject(e *zerolog.Event) {
	e.Str("cpu", i.CPU).
		Int("physical_cores", i.PhysicalCores).
		Int("logical_cores", i.LogicalCores).
		Bool("avx2", i.AVX2).
		Bool("avx512", i.AVX512).
		Int("gpus", len(i.GPUs))
	for _, g := range i.GPUs {
		e.Str("gpu", g.Name)
	}
}
