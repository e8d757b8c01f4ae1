package cmd

import (
	"fmt"
	"strings"

	"github.com/urfave/cli"

	"github.com/wakesync/wakesync/cmd/common"
	"github.com/wakesync/wakesync/pkg/alarmlib"
	"github.com/wakesync/wakesync/pkg/wakecli"
)

func list(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := wakecli.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "list", "new_client", err)
		return nil
	}
	defer client.Close()
	l, err := client.Scheduled()
	if err != nil {
		common.PrintRuntimeErr(ctx, "list", "get_scheduled", err)
		return nil
	}
	if len(l.Alarms) == 0 {
		fmt.Println("wakesync: no alarms armed")
		return nil
	}
	printAlarmTable(l.Alarms)
	return nil
}

func printAlarmTable(alarms []alarmlib.AlarmSummary) {
	txt := "Here are your alarms:"
	txt += "\n\n----------------------------------------------------------------"
	txt += "\n|Num|          Id          |     Next Trigger     |   Repeat    |"
	txt += "\n|---|----------------------|----------------------|-------------|"
	for i, a := range alarms {
		id := a.Id
		if len(id) > 20 {
			id = id[:17] + "..."
		}
		repeat := "once"
		if a.Alarm != nil && a.Alarm.Recurring() {
			repeat = daysString(a.Alarm.Days)
		}
		txt += fmt.Sprintf("\n| %d | %s | %s | %s |",
			i+1,
			beaut(id, 20),
			a.NextTrigger.Local().Format("Mon Jan 2 15:04"),
			beaut(repeat, 11),
		)
	}
	txt += "\n----------------------------------------------------------------"
	fmt.Println(txt)
}

var dayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func daysString(days []int) string {
	names := make([]string, 0, len(days))
	for _, d := range days {
		if d >= 0 && d < 7 {
			names = append(names, dayNames[d])
		}
	}
	return strings.Join(names, ",")
}

func beaut(s string, n int) (b string) {
	n1 := len(s)
	if n1 >= n {
		return s
	}
	x := n - n1
	x1 := x / 2
	w := strings.Repeat(" ", x1)
	b = w + s + w
	if x%2 != 0 {
		b += " "
	}
	return
}
