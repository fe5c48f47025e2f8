package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tranvictor/blockseek/resolver"
	"github.com/tranvictor/blockseek/util"
)

var PauseMs int64

var blockCmd = &cobra.Command{
	Use:   "block <timestamp>...",
	Short: "Find the closest block mined at or before the timestamps",
	Long: `Timestamps are unix seconds or RFC3339 dates. Each of them is resolved with
the block explorer first and with a binary search on the node as fallback.
The strategy that produced the block is printed next to it.

Use --pause to wait between two lookups, eg. to stay below a node's rate limit.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		timestamps := make([]uint64, 0, len(args))
		for _, arg := range args {
			ts, err := parseTimestamp(arg)
			if err != nil {
				return err
			}
			timestamps = append(timestamps, ts)
		}

		r, closer := resolver.NewFromConfig(appConfig, logger, appMetrics)
		defer closer()

		rows := [][]string{}
		failed := 0
		for i, ts := range timestamps {
			if i > 0 {
				util.Sleep(PauseMs)
			}
			date := time.Unix(int64(ts), 0).UTC().Format(time.RFC3339)
			stop := out.Spinner(fmt.Sprintf("resolving %d (%s)", ts, date))
			res, err := r.Resolve(cmd.Context(), ts)
			stop()
			if err != nil {
				failed++
				out.Error("%d (%s): %s", ts, date, describeError(err))
				continue
			}
			rows = append(rows, []string{
				strconv.FormatUint(ts, 10),
				date,
				blockText(res.Block),
				out.Style(strategyText(res.Strategy)),
			})
		}
		out.Table([]string{"Timestamp", "Date (UTC)", "Block", "Strategy"}, rows)

		if failed > 0 {
			return fmt.Errorf("%d of %d timestamps couldn't be resolved", failed, len(timestamps))
		}
		return nil
	},
}

func init() {
	blockCmd.Flags().Int64VarP(&PauseMs, "pause", "p", 0, "milliseconds to wait between two lookups")
	rootCmd.AddCommand(blockCmd)
}
