package cmd

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/wakesync/wakesync/cmd/common"
	"github.com/wakesync/wakesync/pkg/wakecli"
)

func stats(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := wakecli.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "stats", "new_client", err)
		return nil
	}
	defer client.Close()
	s, err := client.Stats()
	if err != nil {
		common.PrintRuntimeErr(ctx, "stats", "get_stats", err)
		return nil
	}
	store := "healthy"
	if s.StoreDegraded {
		store = "degraded (memory only)"
	}
	fmt.Printf(`Alarm daemon stats:

  Armed alarms     : %d
  Scheduled total  : %d
  Cancelled total  : %d
  Triggered total  : %d
  Recovered total  : %d
  Trigger errors   : %d
  Missed records   : %d
  Store            : %s
  Started at       : %s
`,
		s.Armed,
		s.ScheduledTotal,
		s.CancelledTotal,
		s.TriggeredTotal,
		s.RecoveredTotal,
		s.TriggerErrors,
		s.MissedRecords,
		store,
		s.StartedAt.Local().Format("Mon Jan 2 15:04:05"),
	)
	return nil
}
