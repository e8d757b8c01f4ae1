package cmd

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/wakesync/wakesync/cmd/common"
	"github.com/wakesync/wakesync/pkg/wakecli"
)

func recover_(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := wakecli.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "recover", "new_client", err)
		return nil
	}
	defer client.Close()
	if _, err = client.ForceRecovery(); err != nil {
		common.PrintRuntimeErr(ctx, "recover", "force_recovery", err)
		return nil
	}
	fmt.Println("wakesync: recovery scan complete")
	return nil
}

func clearMissed(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := wakecli.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "clear-missed", "new_client", err)
		return nil
	}
	defer client.Close()
	resp, err := client.ClearMissed()
	if err != nil {
		common.PrintRuntimeErr(ctx, "clear-missed", "clear_missed", err)
		return nil
	}
	fmt.Printf("wakesync: cleared %d missed alarm record(s)\n", resp.Cleared)
	return nil
}

func syncState(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := wakecli.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "sync", "new_client", err)
		return nil
	}
	defer client.Close()
	resp, err := client.SyncState()
	if err != nil {
		common.PrintRuntimeErr(ctx, "sync", "sync_state", err)
		return nil
	}
	if len(resp.Alarms) == 0 {
		fmt.Println("wakesync: no alarms armed")
		return nil
	}
	printAlarmTable(resp.Alarms)
	return nil
}
