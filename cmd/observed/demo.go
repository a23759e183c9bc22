package main

import (
	"fmt"

	"github.com/aretw0/observed/internal/demo"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo [arg]",
	Short: "Run the sample observer graph",
	Long: `Builds a.bar observed by g, f, b.bar and b.baz, calls it once and prints
every call in dispatch order. With --identify it runs the identify-observed
scenario instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		opts, err := cfg.Options()
		if err != nil {
			return err
		}

		arg := "banana"
		if len(args) == 1 {
			arg = args[0]
		}

		var lines []demo.Line
		if identify, _ := cmd.Flags().GetBool("identify"); identify {
			lines, err = demo.Identify(arg, opts...)
		} else {
			var s *demo.Scenario
			s, err = demo.NewScenario(opts...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Calling a.bar(%q) with the %s strategy...\n", arg, cfg.Strategy)
			lines, err = s.Call(arg)
		}
		demo.Render(cmd.OutOrStdout(), lines)
		return err
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().Bool("identify", false, "Run the identify-observed scenario")
}
