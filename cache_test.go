package forecaster

import (
	"testing"

	"github.com/gamyers/solar-697/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint(t *testing.T) {
	td := monthlySeries(t, 24, 10, 2, 1)
	same := td.Copy()
	assert.Equal(t, Fingerprint(td), Fingerprint(same))

	changed := td.Copy()
	changed.Y[5] += 1e-9
	assert.NotEqual(t, Fingerprint(td), Fingerprint(changed))

	shifted, err := timedataset.NewUnivariateDataset(timedataset.GenerateMonthlyT(24, monthlyStart.AddDate(0, 1, 0)), td.Y)
	require.NoError(t, err)
	assert.NotEqual(t, Fingerprint(td), Fingerprint(shifted))
}

func TestSplitCache(t *testing.T) {
	td := monthlySeries(t, 24, 10, 2, 1)

	testData := map[string]struct {
		size int
		h    int
		err  error
	}{
		"cached":        {size: 2, h: 6},
		"invalid":       {size: 2, h: 24, err: timedataset.ErrInvalidHorizon},
		"zero horizon":  {size: 2, h: 0, err: timedataset.ErrInvalidHorizon},
		"single entry":  {size: 1, h: 1},
		"longest split": {size: 1, h: 23},
	}

	for name, tc := range testData {
		t.Run(name, func(t *testing.T) {
			cache, err := NewSplitCache(tc.size)
			require.NoError(t, err)

			split, err := cache.Split("z", "GHI", td, tc.h)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				assert.Zero(t, cache.Len())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, cache.Len())
			assert.Equal(t, 24-tc.h, split.Train.Len())
			assert.Equal(t, tc.h, split.Test.Len())

			split.Test.Y[0] = -100
			again, err := cache.Split("z", "GHI", td, tc.h)
			require.NoError(t, err)
			assert.Equal(t, td.Y[24-tc.h], again.Test.Y[0])

			cache.Purge()
			assert.Zero(t, cache.Len())
		})
	}
}

func TestSplitCacheEviction(t *testing.T) {
	cache, err := NewSplitCache(1)
	require.NoError(t, err)
	td := monthlySeries(t, 24, 10, 2, 1)

	_, err = cache.Split("z", "GHI", td, 6)
	require.NoError(t, err)
	_, err = cache.Split("z", "DNI", td, 6)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())
}

func TestNilSplitCache(t *testing.T) {
	var cache *SplitCache
	td := monthlySeries(t, 24, 10, 2, 1)

	split, err := cache.Split("z", "GHI", td, 6)
	require.NoError(t, err)
	assert.Equal(t, 18, split.Train.Len())
	assert.Zero(t, cache.Len())
	cache.Purge()

	_, err = NewSplitCache(0)
	assert.Error(t, err)
}
