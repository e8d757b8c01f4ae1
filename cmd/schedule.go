package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli"

	"github.com/wakesync/wakesync/cmd/common"
	"github.com/wakesync/wakesync/pkg/alarmlib"
	"github.com/wakesync/wakesync/pkg/wakecli"
)

var (
	alarmId    string
	alarmTime  string
	alarmDays  string
	alarmLabel string
	alarmSound string
	voiceMood  string
	difficulty string
	userId     string
	disabled   bool

	scheduleFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "id, i",
			Usage:       "unique alarm id (required)",
			Destination: &alarmId,
		},
		cli.StringFlag{
			Name:        "time, t",
			Usage:       "wall-clock trigger time in HH:MM (required)",
			Destination: &alarmTime,
		},
		cli.StringFlag{
			Name:        "days, d",
			Usage:       "comma-separated weekdays to recur on, 0=Sunday (default: one-time)",
			Destination: &alarmDays,
		},
		cli.StringFlag{
			Name:        "label, l",
			Usage:       "display label for the alarm",
			Destination: &alarmLabel,
		},
		cli.StringFlag{
			Name:        "sound, s",
			Usage:       "sound to play on trigger",
			Destination: &alarmSound,
		},
		cli.StringFlag{
			Name:        "voice-mood, m",
			Usage:       "voice mood for the announcement",
			Destination: &voiceMood,
		},
		cli.StringFlag{
			Name:        "difficulty",
			Usage:       "dismissal challenge difficulty",
			Destination: &difficulty,
		},
		cli.StringFlag{
			Name:        "user, u",
			Usage:       "owning user id",
			Destination: &userId,
		},
		cli.BoolFlag{
			Name:        "disabled",
			Usage:       "store the alarm without arming it",
			Destination: &disabled,
		},
	}
)

func parseDays(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	days := make([]int, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || d < 0 || d > 6 {
			return nil, fmt.Errorf("invalid weekday %q", p)
		}
		days = append(days, d)
	}
	return days, nil
}

func schedule(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if alarmId == "" || alarmTime == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("both --id and --time are required"))
	}
	days, err := parseDays(alarmDays)
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx, err)
	}
	client, err := wakecli.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "schedule", "new_client", err)
		return nil
	}
	defer client.Close()
	resp, err := client.Schedule(&alarmlib.Alarm{
		Id:         alarmId,
		Enabled:    !disabled,
		Time:       alarmTime,
		Days:       days,
		Label:      alarmLabel,
		Sound:      alarmSound,
		VoiceMood:  voiceMood,
		Difficulty: difficulty,
		UserId:     userId,
	})
	if err != nil {
		common.PrintRuntimeErr(ctx, "schedule", "schedule_alarm", err)
		return nil
	}
	if !resp.Armed {
		fmt.Printf("wakesync: stored %s (not armed)\n", resp.AlarmId)
		return nil
	}
	fmt.Printf("wakesync: armed %s, next trigger %s\n",
		resp.AlarmId,
		resp.NextTrigger.Local().Format("Mon Jan 2 15:04:05"),
	)
	return nil
}
