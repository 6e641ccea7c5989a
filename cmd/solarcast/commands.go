package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	forecaster "github.com/gamyers/solar-697"
	"github.com/gamyers/solar-697/arima"
	"github.com/gamyers/solar-697/selection"
	"github.com/spf13/cobra"
)

// forecastCmd fits and validates every variant on one feature of a location
func (a *app) forecastCmd() *cobra.Command {
	var (
		req      forecaster.Request
		htmlPath string
		serial   bool
		options  bool
	)
	cmd := &cobra.Command{
		Use:   "forecast ZIPCODE FEATURE",
		Short: "Validate and forecast a feature with every variant",
		Example: `  solarcast forecast 92101 GHI
  solarcast forecast 92101 DNI --test-periods 24 --forecast-periods 36 --html out/dni.html`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if serial {
				a.cfg.Forecast.Parallel = false
			}
			f, err := a.newForecaster(s)
			if err != nil {
				return err
			}
			req.Zipcode, req.Feature = args[0], args[1]
			res, err := f.Forecast(ctx, req)
			if err != nil {
				return fmt.Errorf("unable to forecast %s for %s, %w", req.Feature, req.Zipcode, err)
			}

			if htmlPath != "" {
				if err := writeHTML(htmlPath, func(w io.Writer) error { return forecaster.PlotForecast(w, res) }); err != nil {
					return fmt.Errorf("unable to write chart, %w", err)
				}
			}

			out := cmd.OutOrStdout()
			if a.format == formatJSON {
				return writeJSON(out, res)
			}
			if options {
				if err := f.Options().Forecast.TablePrint(out, "", "  ", 0); err != nil {
					return err
				}
			}
			if err := res.TablePrint(out); err != nil {
				return err
			}
			if best, ok := res.Best(); ok {
				_, err = fmt.Fprintf(out, "Best: %s\n", best.Name)
			}
			return err
		},
	}

	cmd.Flags().IntVar(&req.TestPeriods, "test-periods", 0, "held out periods, defaults to the config")
	cmd.Flags().IntVar(&req.ForecastPeriods, "forecast-periods", 0, "forecast periods, defaults to the config")
	cmd.Flags().StringVar(&htmlPath, "html", "", "write an html chart of the forecast to this path")
	cmd.Flags().BoolVar(&serial, "serial", false, "fit the variants one after another")
	cmd.Flags().BoolVar(&options, "show-options", false, "print the forecast options before the results")
	return cmd
}

// trendsCmd decomposes every feature of a location
func (a *app) trendsCmd() *cobra.Command {
	var (
		period   int
		htmlPath string
	)
	cmd := &cobra.Command{
		Use:   "trends ZIPCODE",
		Short: "Decompose every feature of a location into trend, seasonal and residual",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			f, err := a.newForecaster(s)
			if err != nil {
				return err
			}
			trends, err := f.Trends(ctx, args[0], period)
			if err != nil {
				return err
			}

			if htmlPath != "" {
				if err := writeHTML(htmlPath, func(w io.Writer) error { return forecaster.PlotTrends(w, trends) }); err != nil {
					return fmt.Errorf("unable to write chart, %w", err)
				}
			}

			out := cmd.OutOrStdout()
			if a.format == formatJSON {
				return writeJSON(out, trends)
			}
			tbl := tabwriter.NewWriter(out, 0, 0, 1, ' ', 0)
			fmt.Fprintf(tbl, "%s, period %d\n", trends.Locale, trends.Period)
			fmt.Fprintf(tbl, "Feature\tPoints\tSeasonal Amplitude\tStatus\t\n")
			for _, ft := range trends.Features {
				if ft.Err != nil {
					fmt.Fprintf(tbl, "%s\t-\t-\t%s\t\n", ft.Feature, ft.Error)
					continue
				}
				fmt.Fprintf(tbl, "%s\t%d\t%.3f\tok\t\n", ft.Feature, len(ft.Decomposition.Observed), amplitude(ft.Decomposition.Seasonal))
			}
			return tbl.Flush()
		},
	}

	cmd.Flags().IntVar(&period, "period", 0, "decomposition period, defaults to the config")
	cmd.Flags().StringVar(&htmlPath, "html", "", "write html charts of the decompositions to this path")
	return cmd
}

// describeCmd prints the descriptive statistics of every feature of a location
func (a *app) describeCmd() *cobra.Command {
	var dataPath, histPath string
	cmd := &cobra.Command{
		Use:   "describe ZIPCODE",
		Short: "Summarize the distribution of every feature of a location",
		Example: `  solarcast describe 92101
  solarcast describe 92101 --html out/data.html --histogram-html out/hist.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			f, err := a.newForecaster(s)
			if err != nil {
				return err
			}
			desc, err := f.Describe(ctx, args[0])
			if err != nil {
				return err
			}

			if dataPath != "" {
				if err := writeHTML(dataPath, func(w io.Writer) error { return forecaster.PlotData(w, desc) }); err != nil {
					return fmt.Errorf("unable to write data chart, %w", err)
				}
			}
			if histPath != "" {
				if err := writeHTML(histPath, func(w io.Writer) error { return forecaster.PlotHistograms(w, desc) }); err != nil {
					return fmt.Errorf("unable to write histogram chart, %w", err)
				}
			}

			out := cmd.OutOrStdout()
			if a.format == formatJSON {
				return writeJSON(out, desc)
			}
			return desc.TablePrint(out)
		},
	}

	cmd.Flags().StringVar(&dataPath, "html", "", "write html charts of the observed series to this path")
	cmd.Flags().StringVar(&histPath, "histogram-html", "", "write html histograms of the features to this path")
	return cmd
}

func amplitude(seasonal []float64) float64 {
	if len(seasonal) == 0 {
		return 0
	}
	lo, hi := seasonal[0], seasonal[0]
	for _, v := range seasonal {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return (hi - lo) / 2
}

// searchCmd runs an order search on a feature and lists the ranked candidates
func (a *app) searchCmd() *cobra.Command {
	var (
		seasonal bool
		grid     bool
		top      int
	)
	cmd := &cobra.Command{
		Use:   "search ZIPCODE FEATURE",
		Short: "Rank ARIMA orders for a feature by AIC",
		Example: `  solarcast search 92101 GHI --seasonal
  solarcast search 92101 GHI --grid --top 5`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			td, err := s.Series(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			results, err := a.search(ctx, td.DropNan().Y, seasonal, grid)
			if err != nil {
				return err
			}
			if top > 0 && len(results) > top {
				results = results[:top]
			}

			out := cmd.OutOrStdout()
			if a.format == formatJSON {
				return writeJSON(out, results)
			}
			tbl := tabwriter.NewWriter(out, 0, 0, 1, ' ', tabwriter.AlignRight)
			fmt.Fprintf(tbl, "Rank\tOrder\tAIC\t\n")
			for i, res := range results {
				fmt.Fprintf(tbl, "%d\t%s\t%.3f\t\n", i+1, res.Order, res.AIC)
			}
			return tbl.Flush()
		},
	}

	cmd.Flags().BoolVar(&seasonal, "seasonal", false, "include seasonal terms")
	cmd.Flags().BoolVar(&grid, "grid", false, "fit every order within the bounds instead of a stepwise search")
	cmd.Flags().IntVar(&top, "top", 10, "number of candidates listed, zero lists all")
	return cmd
}

func (a *app) search(ctx context.Context, y []float64, seasonal, grid bool) ([]selection.FitResult, error) {
	fopt := a.cfg.Forecast.Forecast
	search, period := fopt.Fourier.Search, fopt.Fourier.Period
	if seasonal {
		search, period = fopt.Seasonal.Search, fopt.Seasonal.Period
	}
	stepwise := search.Stepwise(seasonal, period)
	if !grid {
		return selection.Stepwise(ctx, y, stepwise)
	}

	d, sd := stepwise.Differences(y)
	ranges := selection.NewOrderRanges(
		selection.NewRange(0, search.MaxP), selection.Fixed(d), selection.NewRange(0, search.MaxQ),
	)
	if seasonal {
		ranges.SP = selection.NewRange(0, search.MaxSP)
		ranges.SD = selection.Fixed(sd)
		ranges.SQ = selection.NewRange(0, search.MaxSQ)
		ranges.Period = period
	}
	orders := make([]arima.Order, 0, ranges.Count())
	for _, o := range selection.GenerateOrders(ranges) {
		if search.MaxOrder <= 0 || o.NumCoefficients() <= search.MaxOrder {
			orders = append(orders, o)
		}
	}
	return selection.GridSearch(ctx, y, orders, &selection.GridOptions{
		MaxCandidates: search.MaxModels,
		Model:         stepwise.Model,
	})
}

// featuresCmd lists the forecastable features of a location
func (a *app) featuresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "features ZIPCODE",
		Short: "List the forecastable features of a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			f, err := a.newForecaster(s)
			if err != nil {
				return err
			}
			features, err := f.Features(ctx, args[0])
			if err != nil {
				return err
			}
			return writeList(cmd.OutOrStdout(), a.format, features)
		},
	}
}

// zipcodesCmd lists every location in the database
func (a *app) zipcodesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "zipcodes",
		Short: "List the zipcodes with readings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			zipcodes, err := s.Zipcodes(ctx)
			if err != nil {
				return err
			}
			return writeList(cmd.OutOrStdout(), a.format, zipcodes)
		},
	}
}

func writeList(w io.Writer, format string, vals []string) error {
	if format == formatJSON {
		return writeJSON(w, vals)
	}
	for _, v := range vals {
		if _, err := fmt.Fprintln(w, v); err != nil {
			return err
		}
	}
	return nil
}
