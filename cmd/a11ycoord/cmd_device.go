package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jask/a11ycoord/internal/device"
)

var errNoStateFile = errors.New("device.state_file is not configured")

var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Inspect or simulate OS accessibility settings",
	Long: `The host platform reports its accessibility settings through a YAML
bridge file (device.state_file). These commands read it, or write it to
simulate the OS during development.`,
}

var deviceShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the device accessibility state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var probe device.Probe
		if cfg.Device.StateFile != "" {
			probe = device.NewFileProbe(cfg.Device.StateFile, logger)
		}
		st := device.Snapshot(probe)
		w := cmd.OutOrStdout()
		for _, f := range device.Features() {
			fmt.Fprintf(w, "%-14s %s\n", f, onOff(st[f]))
		}
		return nil
	},
}

var deviceSetCmd = &cobra.Command{
	Use:     "set feature=on|off...",
	Short:   "Write features to the bridge file",
	Example: `  a11ycoord device set highContrast=on screenReader=off`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Device.StateFile == "" {
			return errNoStateFile
		}
		fp := device.NewFileProbe(cfg.Device.StateFile, logger)
		st := device.Snapshot(fp)
		for _, arg := range args {
			name, val, ok := strings.Cut(arg, "=")
			if !ok {
				return fmt.Errorf("%q: want feature=on|off", arg)
			}
			f, err := device.ParseFeature(name)
			if err != nil {
				return err
			}
			on, err := parseSwitch(val)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			st[f] = on
		}
		if err := fp.Write(st); err != nil {
			return fmt.Errorf("write %s: %w", fp.Path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", fp.Path)
		return nil
	},
}
