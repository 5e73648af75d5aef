package cli

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lazypower/halflife/internal/engine"
)

const defaultWidth = 80

// --- level command ---

func newLevelCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "level",
		Short: "Print the current caffeine concentration",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, db, err := a.openEngine()
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "%.2f mg/L\n", eng.Level(now()))
			return nil
		},
	}
}

// --- chart command ---

func newChartCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Draw the hourly concentration curve for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			t := now()
			anchor := t
			if date != "" {
				d, err := time.ParseInLocation(time.DateOnly, date, t.Location())
				if err != nil {
					return fmt.Errorf("bad --date %q: want YYYY-MM-DD", date)
				}
				anchor = d
			}

			eng, db, err := a.openEngine()
			if err != nil {
				return err
			}
			defer db.Close()

			mark := -1
			if engine.DayStart(anchor).Equal(engine.DayStart(t)) {
				mark = t.Hour()
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  (mg/L)\n", engine.DayStart(anchor).Format("Mon 2006-01-02"))
			renderChart(out, eng.Series(anchor), mark, terminalWidth())
			fmt.Fprintf(out, "now: %.2f mg/L\n", eng.Level(t))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to draw, YYYY-MM-DD (default today)")
	return cmd
}

func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultWidth
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

// renderChart draws one horizontal bar per hour, scaled to the day's peak.
// The row for hour mark gets a leading '>'; pass -1 for none.
func renderChart(w io.Writer, series engine.Series, mark, width int) {
	labels := engine.HourLabels()
	// "> 23:00 |" + bar + " 12.34"
	const chrome = 2 + 5 + 2 + 1 + 6
	barWidth := max(width-chrome, 10)

	peak := 0.0
	for _, v := range series {
		peak = math.Max(peak, v)
	}

	for i, v := range series {
		cursor := " "
		if i == mark {
			cursor = ">"
		}
		n := 0
		if peak > 0 {
			n = int(math.Round(v / peak * float64(barWidth)))
		}
		fmt.Fprintf(w, "%s %5s |%s%s %5.2f\n",
			cursor, labels[i], strings.Repeat("#", n), strings.Repeat(" ", barWidth-n), v)
	}
}
