package stats

// SeasonalStrengthThreshold is the seasonal strength at or above which a seasonal difference
// is recommended.
const SeasonalStrengthThreshold = 0.64

// SeasonalStrength measures how much of the non trend variation is explained by the
// seasonal component, max(0, 1 - Var(R)/Var(S+R)). Zero is returned if the series is
// shorter than two periods.
func SeasonalStrength(y []float64, period int) float64 {
	d, err := DecomposeValues(y, period)
	if err != nil {
		return 0
	}

	seasResid := make([]float64, 0, len(y))
	for i := range d.Residual {
		seasResid = append(seasResid, d.Seasonal[i]+d.Residual[i])
	}
	// treat floating point noise on a series without seasonal variation as none
	varSR := Variance(seasResid)
	if varSR <= 1e-12*Variance(y) || varSR == 0 {
		return 0
	}
	return max(0, 1-Variance(d.Residual)/varSR)
}

// NDiffs estimates the number of first differences, up to maxD, needed for the series to pass
// a KPSS test at the alpha significance level.
func NDiffs(y []float64, maxD int, alpha float64) int {
	if maxD <= 0 {
		return 0
	}
	if alpha <= 0 {
		alpha = 0.05
	}

	current := y
	for d := 0; d < maxD; d++ {
		res, err := KPSS(current, 0)
		if err != nil || res.Stationary(alpha) {
			return d
		}
		current = Diff(current, 1, 1)
	}
	return maxD
}

// NSDiffs estimates the number of seasonal differences, up to maxD, using the seasonal
// strength heuristic. A period below 2 never needs seasonal differencing.
func NSDiffs(y []float64, period, maxD int) int {
	if period < 2 || maxD <= 0 {
		return 0
	}

	current := y
	for d := 0; d < maxD; d++ {
		if len(current) < 2*period || SeasonalStrength(current, period) < SeasonalStrengthThreshold {
			return d
		}
		current = Diff(current, period, 1)
	}
	return maxD
}
