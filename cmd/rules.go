package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/intake-cli/internal/correction"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and validate correction stages",
}

// -- rules list --

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the active correction stages in evaluation order",
	RunE: func(cmd *cobra.Command, _ []string) error {
		stages, err := loadStages(cfg)
		if err != nil {
			return err
		}
		formatStages(cmd.OutOrStdout(), stages)
		return nil
	},
}

// -- rules validate --

var rulesValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Compile a YAML rules file and report errors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stages, err := correction.LoadStages(args[0])
		if err != nil {
			return err
		}
		if _, err := correction.New(stages); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d stages ok\n", args[0], len(stages))
		return nil
	},
}

// -- rules export --

var rulesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the built-in stages as a YAML rules file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, err := correction.MarshalStages(correction.DefaultStages())
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rulesCmd.AddCommand(rulesListCmd, rulesValidateCmd, rulesExportCmd)
	rootCmd.AddCommand(rulesCmd)
}

func formatStages(w io.Writer, stages []correction.Stage) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tFIELD\tFROM\tTO\tREASON")
	for i, s := range stages {
		from := strings.Join(s.From, ",")
		if s.FromMissing {
			from = "none"
		}
		to := s.To
		if to == "" && s.Capture != "" {
			to = fmt.Sprintf("%s x%d", s.Capture, s.Multiplier)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", i+1, s.ID, s.Field, from, to, s.Reason)
	}
	_ = tw.Flush()
}
