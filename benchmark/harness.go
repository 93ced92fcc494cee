package benchmark

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	ExecutionTimeout = 5 * time.Minute
	StandardRuntime  = time.Minute
	MinimumRuntime   = 10 * time.Second
	MinIterations    = 100

	ten         = 10
	hundred     = ten * ten
	thousand    = ten * hundred
	tenThousand = ten * thousand
)

// TimerManager is the subset of testing.B the cases use to exclude setup
// work from timings.
type TimerManager interface {
	ResetTimer()
	StopTimer()
}

type BenchCase func(context.Context, TimerManager, int) error
type BenchFunction func(*testing.B)

func WrapCase(bench BenchCase) BenchFunction {
	name := getName(bench)
	return func(b *testing.B) {
		ctx := context.Background()
		b.ResetTimer()
		err := bench(ctx, b, b.N)
		require.NoError(b, err, "case='%s'", name)
	}
}

func getAllCases() []*CaseDefinition {
	return []*CaseDefinition{
		{
			Bench:   CanaryIncCase,
			Count:   hundred,
			Size:    -1,
			Runtime: MinimumRuntime,
		},
		{
			Bench:   BundleMetadataDecoding,
			Count:   tenThousand,
			Size:    -1,
			Runtime: StandardRuntime,
		},
		{
			Bench:   BundleFlatDocumentDecoding,
			Count:   tenThousand,
			Size:    -1,
			Runtime: StandardRuntime,
		},
		{
			Bench:   BundleDeepDocumentDecoding,
			Count:   thousand,
			Size:    -1,
			Runtime: StandardRuntime,
		},
		{
			Bench:   BundleNamedQueryDecoding,
			Count:   tenThousand,
			Size:    -1,
			Runtime: StandardRuntime,
		},
	}
}
