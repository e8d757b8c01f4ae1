package cmd

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli"

	"github.com/wakesync/wakesync/cmd/common"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

func Execute(args []string, bArgs BuildArgs) error {
	app := cli.App{
		Name:                  "wakesync",
		HelpName:              "wakesync",
		Usage:                 "An offline-resilient alarm scheduler.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "wakesync <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          common.UsageErrorCallback,
		Commands: []cli.Command{
			{
				Name:   "daemon",
				Usage:  "runs the waked alarm daemon in the foreground",
				Action: daemon,
				Flags:  daemonFlags,
			},
			{
				Name:                   "schedule",
				Aliases:                []string{"s"},
				Usage:                  "arms an alarm",
				Action:                 schedule,
				OnUsageError:           common.UsageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            ScheduleDescription,
				UseShortOptionHandling: true,
				Flags:                  scheduleFlags,
			},
			{
				Name:               "cancel",
				Aliases:            []string{"c"},
				Usage:              "disarms an alarm",
				Action:             cancel,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        CancelDescription,
			},
			{
				Name:               "list",
				Aliases:            []string{"l"},
				Usage:              "displays the armed alarms",
				Action:             list,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        ListDescription,
			},
			{
				Name:               "stats",
				Usage:              "shows daemon scheduling counters",
				Action:             stats,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        StatsDescription,
			},
			{
				Name:               "recover",
				Usage:              "forces a full recovery scan",
				Action:             recover_,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        RecoverDescription,
			},
			{
				Name:               "clear-missed",
				Usage:              "deletes all missed-alarm records",
				Action:             clearMissed,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        ClearMissedDescription,
			},
			{
				Name:               "sync",
				Usage:              "broadcasts and prints the full alarm state",
				Action:             syncState,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        SyncDescription,
			},
			{
				Name:               "watch",
				Aliases:            []string{"w"},
				Usage:              "streams alarm events to the terminal",
				Action:             watch,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        WatchDescription,
			},
			{
				Name:               "snooze",
				Usage:              "snoozes a fired alarm",
				Action:             snooze,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        SnoozeDescription,
			},
			{
				Name:               "dismiss",
				Usage:              "dismisses a fired alarm",
				Action:             dismiss,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        DismissDescription,
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  common.Help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints installed version of wakesync",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             common.GetVersion,
			},
		},
		Action:                 common.Help,
		UseShortOptionHandling: true,
		HideHelp:               true,
		HideVersion:            true,
	}
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}
