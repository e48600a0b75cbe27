package tracker

import (
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/plantworks/leantwin/errors"
)

// memoryUsedPercent returns system memory utilization. Used only to
// warn on submissions under pressure.
func memoryUsedPercent() (float64, error) {
	v, err := mem.VirtualMemory()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get memory stats")
	}
	return v.UsedPercent, nil
}
