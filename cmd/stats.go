package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	v1 "github.com/kubev2v/task-scheduler/api/v1"
	"github.com/kubev2v/task-scheduler/pkg/client"
)

func NewStatsCommand() *cobra.Command {
	var (
		serverURL string
		token     string
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the pools and statistics of a running scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			c := client.NewClient(serverURL, token)

			pools, err := c.ListPools(ctx)
			if err != nil {
				return err
			}
			eff, err := c.Efficiency(ctx)
			if err != nil {
				return err
			}

			renderStats(cmd.OutOrStdout(), pools.Pools, *eff)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&serverURL, "server", "http://localhost:8000", "Base URL of the scheduler HTTP API")
	flags.StringVar(&token, "token", "", "Bearer token sent when the API requires authentication")
	flags.DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	return cmd
}

// renderStats prints one row per pool. Paused pools are yellow and failure
// counts red. Colored columns are colored on every row so tabwriter keeps
// them aligned.
func renderStats(w io.Writer, pools []v1.Pool, eff v1.Efficiency) {
	bold := color.New(color.Bold).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "POOL\tSTATE\tWORKERS\tQUEUED\tRUNNING\tSUBMITTED\tCOMPLETED\tFAILED\tAVG MS")
	for _, p := range pools {
		state := green("running")
		if p.Paused {
			state = yellow("paused")
		}
		failed := green(p.Stats.Failed)
		if p.Stats.Failed > 0 {
			failed = red(p.Stats.Failed)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\t%.2f\n",
			p.Name, state, p.Workers, p.Queued, p.Running,
			p.Stats.Submitted, p.Stats.Completed, failed, p.Stats.AverageExecutionTimeMs)
	}
	tw.Flush()

	fmt.Fprintf(w, "\n%s %.1f%% (%d submitted, %d active)\n",
		bold("Efficiency:"), eff.Efficiency*100, eff.Submitted, eff.Active)
}
