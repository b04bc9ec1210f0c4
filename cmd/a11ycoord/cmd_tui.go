package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jask/a11ycoord/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the accessibility settings screen",
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()

	rt, err := openRuntime(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer rt.close()

	app := tui.New(ctx, tui.Options{
		Coordinator: rt.coord,
		Elements:    rt.els,
		Keys:        rt.keys,
		Logger:      logger,
	})
	return tui.Run(ctx, app, rt.sched)
}
