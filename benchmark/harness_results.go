package benchmark

import (
	"fmt"
	"time"

	"github.com/montanaflynn/stats"
)

type BenchResult struct {
	Name       string
	Trials     int
	Duration   time.Duration
	Raw        []Result
	DataSize   int
	Operations int
	hasErrors  *bool
}

type Result struct {
	Duration   time.Duration
	Iterations int
	Error      error
}

// Report summarizes a run: total seconds plus median/min/max throughput in
// operations per second across trials.
func (r *BenchResult) Report() (map[string]float64, error) {
	timings := r.timings()

	median, err := stats.Median(timings)
	if err != nil {
		return nil, err
	}

	min, err := stats.Min(timings)
	if err != nil {
		return nil, err
	}

	max, err := stats.Max(timings)
	if err != nil {
		return nil, err
	}

	return map[string]float64{
		"seconds":            r.Duration.Round(time.Millisecond).Seconds(),
		"ops_per_second":     r.getThroughput(median),
		"ops_per_second_min": r.getThroughput(max),
		"ops_per_second_max": r.getThroughput(min),
	}, nil
}

func (r *BenchResult) timings() []float64 {
	out := []float64{}
	for _, trial := range r.Raw {
		out = append(out, trial.Duration.Seconds())
	}
	return out
}

func (r *BenchResult) getThroughput(data float64) float64 { return float64(r.Operations) / data }

func (r *BenchResult) String() string {
	return fmt.Sprintf("name=%s, trials=%d, secs=%s", r.Name, r.Trials, r.Duration)
}

func (r *BenchResult) HasErrors() bool {
	if r.hasErrors == nil {
		var val bool
		for _, res := range r.Raw {
			if res.Error != nil {
				val = true
				break
			}
		}
		r.hasErrors = &val
	}

	return *r.hasErrors
}
