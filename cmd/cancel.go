package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli"

	"github.com/wakesync/wakesync/cmd/common"
	"github.com/wakesync/wakesync/pkg/wakecli"
)

func cancel(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if id == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("alarm id is required"))
	}
	client, err := wakecli.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "cancel", "new_client", err)
		return nil
	}
	defer client.Close()
	if _, err = client.Cancel(id); err != nil {
		common.PrintRuntimeErr(ctx, "cancel", "cancel_alarm", err)
		return nil
	}
	fmt.Printf("wakesync: cancelled %s\n", id)
	return nil
}

func snooze(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if id == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("alarm id is required"))
	}
	client, err := wakecli.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "snooze", "new_client", err)
		return nil
	}
	defer client.Close()
	resp, err := client.Snooze(id)
	if err != nil {
		common.PrintRuntimeErr(ctx, "snooze", "snooze_alarm", err)
		return nil
	}
	fmt.Printf("wakesync: snoozed %s until %s\n",
		id,
		resp.NextTrigger.Local().Format("15:04:05"),
	)
	return nil
}

func dismiss(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if id == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("alarm id is required"))
	}
	client, err := wakecli.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "dismiss", "new_client", err)
		return nil
	}
	defer client.Close()
	if _, err = client.Dismiss(id); err != nil {
		common.PrintRuntimeErr(ctx, "dismiss", "dismiss_alarm", err)
		return nil
	}
	fmt.Printf("wakesync: dismissed %s\n", id)
	return nil
}
