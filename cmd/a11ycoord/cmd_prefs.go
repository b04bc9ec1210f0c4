package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/a11ycoord/core"
	"github.com/jask/a11ycoord/internal/database"
	"github.com/jask/a11ycoord/internal/prefs"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change stored accessibility preferences",
}

var showRaw bool

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print default, stored, device and effective values for every flag",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context(), cfg, logger, false)
		if err != nil {
			return err
		}
		defer rt.close()
		if showRaw {
			return writeRawSettings(cmd.Context(), cmd.OutOrStdout(), rt, cfg.Database.Path)
		}
		writeToggles(cmd.OutOrStdout(), rt.coord)
		return nil
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set flag=on|off...",
	Short: "Change one or more stored flags",
	Example: `  a11ycoord prefs set largeText=on
  a11ycoord prefs set highContrast=off reduceMotion=on`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := parsePatch(args)
		if err != nil {
			return err
		}
		rt, err := openRuntime(cmd.Context(), cfg, logger, false)
		if err != nil {
			return err
		}
		defer rt.close()
		for f := range patch {
			if rt.coord.Toggle(f).Locked {
				fmt.Fprintf(cmd.ErrOrStderr(), "note: %s is enforced by the device; the stored value is saved but has no visible effect\n", f)
			}
		}
		if err := rt.coord.UpdatePreferences(cmd.Context(), patch); err != nil {
			return err
		}
		writeToggles(cmd.OutOrStdout(), rt.coord)
		return nil
	},
}

var prefsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore default preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context(), cfg, logger, false)
		if err != nil {
			return err
		}
		defer rt.close()
		if err := rt.coord.ResetPreferences(cmd.Context()); err != nil {
			if errors.Is(err, prefs.ErrPersist) {
				logger.Warn("reset not persisted", zap.Error(err))
			}
			return err
		}
		writeToggles(cmd.OutOrStdout(), rt.coord)
		return nil
	},
}

func parsePatch(args []string) (prefs.Patch, error) {
	patch := prefs.Patch{}
	for _, arg := range args {
		name, val, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("%q: want flag=on|off", arg)
		}
		f, err := prefs.ParseFlag(name)
		if err != nil {
			return nil, err
		}
		on, err := parseSwitch(val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		patch[f] = on
	}
	return patch, nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("%q is not on or off", s)
}

func writeToggles(w io.Writer, c *core.Coordinator) {
	stored := c.Preferences()
	defaults := c.Resolver().Defaults()
	fmt.Fprintf(w, "%-20s %-8s %-7s %-7s %-10s %s\n", "FLAG", "DEFAULT", "STORED", "DEVICE", "EFFECTIVE", "LOCKED")
	for _, ts := range c.Toggles() {
		fmt.Fprintf(w, "%-20s %-8s %-7s %-7s %-10s %s\n",
			ts.Flag, onOff(defaults.Get(ts.Flag)), onOff(stored.Get(ts.Flag)), onOff(ts.DeviceEnforced), onOff(ts.Value), yesNo(ts.Locked))
	}
}

var errNotSQLite = errors.New("--raw needs store.backend = sqlite")

// writeRawSettings dumps the settings table as stored, with the schema
// version it was migrated to.
func writeRawSettings(ctx context.Context, w io.Writer, rt *runtime, dbPath string) error {
	if rt.settings == nil {
		return errNotSQLite
	}
	version, ok, err := database.SchemaVersion(dbPath)
	if err != nil {
		return err
	}
	if ok {
		fmt.Fprintf(w, "schema version %d\n", version)
	}
	rows, err := rt.settings.List(ctx)
	if err != nil {
		return fmt.Errorf("list settings: %w", err)
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s  %s  %s\n", r.UpdatedAt.Format(time.RFC3339), r.Key, r.Value)
	}
	return nil
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
