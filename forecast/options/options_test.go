package options

import (
	"bytes"
	"testing"

	"github.com/gamyers/solar-697/selection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	testData := map[string]struct {
		opt func() *Options
		err error
	}{
		"nil uses defaults": {
			opt: func() *Options { return nil },
		},
		"defaults": {
			opt: NewDefaultOptions,
		},
		"confidence too high": {
			opt: func() *Options {
				o := NewDefaultOptions()
				o.ConfidenceLevel = 1
				return o
			},
			err: ErrInvalidConfidenceLevel,
		},
		"fourier period": {
			opt: func() *Options {
				o := NewDefaultOptions()
				o.Fourier.Period = 1
				return o
			},
			err: ErrInvalidPeriod,
		},
		"too many fourier orders": {
			opt: func() *Options {
				o := NewDefaultOptions()
				o.Fourier.Orders = 7
				return o
			},
			err: ErrInvalidFourierOrders,
		},
		"seasonal period": {
			opt: func() *Options {
				o := NewDefaultOptions()
				o.Seasonal.Period = 0
				return o
			},
			err: ErrInvalidPeriod,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt, err := td.opt().Validate()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, 0.05, opt.Alpha(), 1e-12)
		})
	}
}

func TestDefaults(t *testing.T) {
	opt := NewDefaultOptions()

	fourier := opt.Fourier.Search.Stepwise(false, opt.Fourier.Period)
	assert.False(t, fourier.Seasonal)
	assert.Equal(t, 1, fourier.StartP)
	assert.Equal(t, 1, fourier.StartQ)
	assert.Equal(t, 3, fourier.MaxP)
	assert.Equal(t, 4, fourier.MaxQ)
	assert.Equal(t, selection.AutoDifference, fourier.D)

	seasonal := opt.Seasonal.Search.Stepwise(true, opt.Seasonal.Period)
	assert.True(t, seasonal.Seasonal)
	assert.Equal(t, 12, seasonal.Period)
	assert.Equal(t, 3, seasonal.MaxP)
	assert.Equal(t, 3, seasonal.MaxQ)
	assert.Equal(t, 2, seasonal.MaxSP)
	assert.Equal(t, 2, seasonal.MaxSQ)
	assert.Equal(t, 1, seasonal.MaxSD)

	// the stepwise options own their model options
	seasonal.Model.Restarts = 9
	assert.Equal(t, 3, opt.Seasonal.Search.Model.Restarts)
}

func TestTablePrint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewDefaultOptions().TablePrint(&buf, "", "  ", 0))
	out := buf.String()
	assert.Contains(t, out, "Confidence Level: 0.95")
	assert.Contains(t, out, "Fourier: annual period 12 with 2 orders")
	assert.Contains(t, out, "Seasonal: period 12")
}
