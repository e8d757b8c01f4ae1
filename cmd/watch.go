package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli"

	"github.com/wakesync/wakesync/cmd/common"
	"github.com/wakesync/wakesync/pkg/alarmlib"
	"github.com/wakesync/wakesync/pkg/wakecli"
)

func watch(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := wakecli.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "watch", "new_client", err)
		return nil
	}
	if _, err = client.Subscribe(); err != nil {
		common.PrintRuntimeErr(ctx, "watch", "subscribe", err)
		return nil
	}

	client.AddHandler(alarmlib.EventAlarmTriggered, wakecli.NewTriggeredHandler(
		func(t *alarmlib.TriggeredAlarm) error {
			label := t.Alarm.Label
			if label == "" {
				label = t.Alarm.Id
			}
			if t.Late {
				fmt.Printf("[%s] MISSED ALARM %s (was due earlier)\n",
					t.FiredAt.Local().Format("15:04:05"), label)
				return nil
			}
			fmt.Printf("[%s] ALARM %s\n", t.FiredAt.Local().Format("15:04:05"), label)
			return nil
		},
	))
	client.AddHandler(alarmlib.EventAlarmStateSync, wakecli.NewStateSyncHandler(
		func(alarms []alarmlib.AlarmSummary) error {
			fmt.Printf("state sync: %d alarm(s) armed\n", len(alarms))
			return nil
		},
	))
	for _, ev := range []string{
		alarmlib.EventAlarmScheduled,
		alarmlib.EventAlarmCancelled,
		alarmlib.EventAlarmDismissed,
		alarmlib.EventAlarmSnoozed,
		alarmlib.EventNetworkStatus,
	} {
		ev := ev
		client.AddHandler(ev, wakecli.HandlerFunc(func(m json.RawMessage) error {
			fmt.Printf("%s: %s\n", ev, string(m))
			return nil
		}))
	}

	fmt.Println("wakesync: watching for alarm events (ctrl-c to stop)")
	if err := client.Listen(); err != nil {
		common.PrintRuntimeErr(ctx, "watch", "listen", err)
	}
	return nil
}
