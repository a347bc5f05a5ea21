package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"nfhsdash/internal/exporter"
)

func newRoundsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rounds",
		Short: "List survey rounds in the order they appear",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := o.service(cmd.Context())
			if err != nil {
				return err
			}
			rounds, err := svc.Rounds(cmd.Context())
			if err != nil {
				return classify(err)
			}
			for _, r := range rounds {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), r)
			}
			return nil
		},
	}
}

func newIndicatorsCmd(o *options) *cobra.Command {
	var round string
	cmd := &cobra.Command{
		Use:   "indicators",
		Short: "List the numeric indicators of a round",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := o.service(cmd.Context())
			if err != nil {
				return err
			}
			if err := requireRound(cmd.Context(), svc, round); err != nil {
				return err
			}
			indicators, err := svc.Indicators(cmd.Context(), round)
			if err != nil {
				return classify(err)
			}
			for _, name := range indicators {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&round, "round", "", "survey round label")
	_ = cmd.MarkFlagRequired("round")
	return cmd
}

func newSummaryCmd(o *options) *cobra.Command {
	var round, indicator string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the average and the states at the max and min",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := o.service(cmd.Context())
			if err != nil {
				return err
			}
			s, err := svc.Summary(cmd.Context(), round, indicator)
			if err != nil {
				return classify(err)
			}

			green := color.New(color.FgGreen)
			heading(cmd, "NFHS round %s: %s", s.Round, s.Indicator)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintf(w, "Average\t%s\n", green.Sprint(strconv.FormatFloat(s.AverageRounded, 'f', 2, 64)))
			_, _ = fmt.Fprintf(w, "State at max\t%s (%s)\n", s.StateAtMax, formatValue(&s.Max))
			_, _ = fmt.Fprintf(w, "State at min\t%s (%s)\n", s.StateAtMin, formatValue(&s.Min))
			_, _ = fmt.Fprintf(w, "States\t%d\n", s.Count)
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&round, "round", "", "survey round label")
	cmd.Flags().StringVar(&indicator, "indicator", "", "indicator column")
	_ = cmd.MarkFlagRequired("round")
	_ = cmd.MarkFlagRequired("indicator")
	return cmd
}

func newTopCmd(o *options) *cobra.Command {
	var round, indicator, out string
	var n int
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Rank states by an indicator, highest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(out); err != nil {
				return err
			}
			svc, err := o.service(cmd.Context())
			if err != nil {
				return err
			}
			if err := requireRound(cmd.Context(), svc, round); err != nil {
				return err
			}
			top, err := svc.Top(cmd.Context(), round, indicator, n)
			if err != nil {
				return classify(err)
			}

			heading(cmd, "Top %d States: %s (NFHS round %s)", len(top), indicator, round)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "RANK\tSTATE\tVALUE")
			for i, v := range top {
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, v.State, formatValue(v.Value))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if out == "" {
				return nil
			}
			return o.write(cmd, absPath(out), exporter.TopTable(round, indicator, top))
		},
	}
	cmd.Flags().StringVar(&round, "round", "", "survey round label")
	cmd.Flags().StringVar(&indicator, "indicator", "", "indicator column")
	cmd.Flags().IntVarP(&n, "n", "n", 0, "number of states (defaults to dataset.top_n)")
	cmd.Flags().StringVar(&out, "out", "", "also write the ranking to a .csv or .xlsx file")
	_ = cmd.MarkFlagRequired("round")
	_ = cmd.MarkFlagRequired("indicator")
	return cmd
}

func newTrendCmd(o *options) *cobra.Command {
	var indicator, out string
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Average an indicator over every state, per survey round",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(out); err != nil {
				return err
			}
			svc, err := o.service(cmd.Context())
			if err != nil {
				return err
			}
			trend, err := svc.Trend(cmd.Context(), indicator)
			if err != nil {
				return classify(err)
			}
			if len(trend) == 0 {
				return exitError(ExitNoData, "nfhs-report: no rounds with data for %q", indicator)
			}

			heading(cmd, "Average %s by NFHS Round", indicator)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ROUND\tAVERAGE\tSTATES")
			for _, r := range trend {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%d\n", r.Round, strconv.FormatFloat(r.Average, 'f', 2, 64), r.Count)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if out == "" {
				return nil
			}
			return o.write(cmd, absPath(out), exporter.TrendTable(indicator, trend))
		},
	}
	cmd.Flags().StringVar(&indicator, "indicator", "", "indicator column")
	cmd.Flags().StringVar(&out, "out", "", "also write the trend to a .csv or .xlsx file")
	_ = cmd.MarkFlagRequired("indicator")
	return cmd
}

// formatValue prints a value with two decimals, or "-" when missing.
func formatValue(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
