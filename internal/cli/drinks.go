package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lazypower/halflife/internal/engine"
	"github.com/lazypower/halflife/internal/intake"
)

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// --- log command ---

func newLogCmd(a *app) *cobra.Command {
	var (
		volume float64
		name   string
		mgPer  float64
		dose   float64
		at     string
	)
	cmd := &cobra.Command{
		Use:   "log <coffee|tea|custom>",
		Short: "Log a drink",
		Long: "Log a drink from the catalog, or a custom one with --name and --mg.\n" +
			"--at accepts HH:MM (today), \"YYYY-MM-DD HH:MM\" or RFC 3339.",
		Example: "  halflife log coffee --volume 350\n" +
			"  halflife log custom --name cola --volume 355 --mg 22.5 --at 14:30",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := now()
			req := engine.DrinkRequest{
				Drink:    args[0],
				Name:     name,
				VolumeMl: volume,
			}
			if cmd.Flags().Changed("mg") {
				req.MgPer240 = &mgPer
			}
			if cmd.Flags().Changed("caffeine") {
				req.CaffeineMg = &dose
			}
			if at != "" {
				consumed, err := parseAt(at, t)
				if err != nil {
					return err
				}
				req.ConsumedAt = &consumed
			}

			eng, db, err := a.openEngine()
			if err != nil {
				return err
			}
			defer db.Close()

			d, err := eng.LogDrink(req, t)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged %s: %.0f ml, %.2f mg caffeine at %s\n",
				d.Name, d.VolumeMl, d.CaffeineMg, d.ConsumedAt.In(t.Location()).Format("2006-01-02 15:04"))
			fmt.Fprintf(cmd.OutOrStdout(), "level now %.2f mg/L\n", eng.Level(t))
			return nil
		},
	}
	cmd.Flags().Float64VarP(&volume, "volume", "v", intake.StandardServingMl, "volume in ml")
	cmd.Flags().StringVarP(&name, "name", "n", "", "name of a custom drink")
	cmd.Flags().Float64Var(&mgPer, "mg", 0, "custom drink caffeine in mg per 240 ml")
	cmd.Flags().Float64Var(&dose, "caffeine", 0, "total caffeine in mg, overriding the per-240 ml figure")
	cmd.Flags().StringVar(&at, "at", "", "when the drink was consumed (default now)")
	return cmd
}

// parseAt reads a consumption time relative to now's day and location.
func parseAt(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	loc := now.Location()
	if t, err := time.ParseInLocation("15:04", s, loc); err == nil {
		y, m, d := now.Date()
		return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc), nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", s, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q: want HH:MM, \"YYYY-MM-DD HH:MM\" or RFC 3339", s)
}

// --- list command ---

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List logged drinks in the order they were logged",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, db, err := a.openEngine()
			if err != nil {
				return err
			}
			defer db.Close()

			printDrinks(cmd.OutOrStdout(), eng.Drinks.All(), now().Location())
			return nil
		},
	}
}

func printDrinks(w io.Writer, drinks []intake.Drink, loc *time.Location) {
	if len(drinks) == 0 {
		fmt.Fprintln(w, "No drinks logged.")
		return
	}
	for i, d := range drinks {
		fmt.Fprintf(w, "#%-3d %s  %-16s %7.0f ml %8.2f mg  %s\n",
			i+1, d.ConsumedAt.In(loc).Format("2006-01-02 15:04"), d.Name, d.VolumeMl, d.CaffeineMg, d.ID)
	}
}

// --- rm command ---

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id|#n>",
		Short: "Remove a drink by ID or by its #n position in list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, db, err := a.openEngine()
			if err != nil {
				return err
			}
			defer db.Close()

			if pos, ok := strings.CutPrefix(args[0], "#"); ok {
				n, err := strconv.Atoi(pos)
				if err != nil {
					return fmt.Errorf("bad position %q", args[0])
				}
				if err := eng.RemoveDrinkAt(n - 1); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed #%d\n", n)
				return nil
			}

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("bad drink id %q: use an ID or #n from list", args[0])
			}
			if err := eng.RemoveDrink(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", id)
			return nil
		},
	}
}

// --- clear command ---

var errAborted = errors.New("aborted")

func newClearCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every logged drink",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && isTerminal(int(os.Stdin.Fd())) {
				fmt.Fprint(cmd.OutOrStdout(), "Remove every logged drink? [y/N] ")
				if !confirm(cmd.InOrStdin()) {
					return errAborted
				}
			}

			eng, db, err := a.openEngine()
			if err != nil {
				return err
			}
			defer db.Close()

			n := eng.Drinks.Len()
			if err := eng.ClearDrinks(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %d drinks\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func confirm(r io.Reader) bool {
	line, _ := bufio.NewReader(r).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
