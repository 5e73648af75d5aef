package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lazypower/halflife/internal/engine"
)

func newSettingsCmd(a *app) *cobra.Command {
	var halfLife, vd, weight float64
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the decay model settings",
		Example: "  halflife settings\n" +
			"  halflife settings --half-life 6 --weight 82",
		RunE: func(cmd *cobra.Command, args []string) error {
			var p engine.SettingsPatch
			if cmd.Flags().Changed("half-life") {
				p.HalfLifeHours = &halfLife
			}
			if cmd.Flags().Changed("vd") {
				p.VolumeOfDistribution = &vd
			}
			if cmd.Flags().Changed("weight") {
				p.BodyWeightKg = &weight
			}

			eng, db, err := a.openEngine()
			if err != nil {
				return err
			}
			defer db.Close()

			s := eng.Settings()
			if !p.Empty() {
				if s, err = eng.UpdateSettings(p); err != nil {
					return err
				}
			}
			printSettings(cmd.OutOrStdout(), s)
			return nil
		},
	}
	cmd.Flags().Float64Var(&halfLife, "half-life", 0, "elimination half-life in hours")
	cmd.Flags().Float64Var(&vd, "vd", 0, "volume of distribution in L/kg")
	cmd.Flags().Float64Var(&weight, "weight", 0, "body weight in kg")
	return cmd
}

func printSettings(w io.Writer, s engine.Settings) {
	fmt.Fprintf(w, "half-life:              %.2f h\n", s.HalfLifeHours)
	fmt.Fprintf(w, "volume of distribution: %.2f L/kg\n", s.VolumeOfDistribution)
	fmt.Fprintf(w, "body weight:            %.2f kg\n", s.BodyWeightKg)
}
