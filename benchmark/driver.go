package benchmark

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// DriverMain runs every registered case once and prints its report. It
// returns an error if any case failed.
func DriverMain(ctx context.Context) error {
	var failed []string
	for _, c := range getAllCases() {
		res := c.Run(ctx)
		if res.HasErrors() {
			failed = append(failed, res.Name)
			continue
		}

		report, err := res.Report()
		if err != nil {
			return errors.Wrapf(err, "summarizing case '%s'", res.Name)
		}
		fmt.Printf("    %s: ops/sec=%.0f (min=%.0f, max=%.0f)\n", res.Name,
			report["ops_per_second"], report["ops_per_second_min"], report["ops_per_second_max"])
	}

	if len(failed) > 0 {
		return errors.Errorf("benchmark cases failed: %v", failed)
	}
	return nil
}
