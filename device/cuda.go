//go:build cuda

package device

import (
	"github.com/pkg/errors"
	"gorgonia.org/cu"
)

func cudaDevices() ([]GPU, error) {
	n, err := cu.NumDevices()
	if err != nil {
		return nil, errors.Wrap(err, "counting cuda devices")
	}
	var gpus []GPU
	for d := 0; d < n; d++ {
		dev := cu.Device(d)
		name, err := dev.Name()
		if err != nil {
			return gpus, errors.Wrapf(err, "cuda device %d", d)
		}
		mem, _ := dev.TotalMem()
		cr, _ := dev.Attribute(cu.ClockRate)
		maj, _ := dev.Attribute(cu.ComputeCapabilityMajor)
		min, _ := dev.Attribute(cu.ComputeCapabilityMinor)
		gpus = append(gpus, GPU{Index: d, Name: name, Memory: mem, Major: maj, Minor: min, ClockKHz: cr})
	}
	return gpus, nil
}
