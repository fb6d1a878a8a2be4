package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/intake-cli/internal/model"
)

var (
	extractText    string
	extractFile    string
	extractHint    string
	extractCaseID  string
	extractExplain bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract fields from one transcript",
	Long:  "Reads a transcript from --text, --file or stdin and prints the extraction result as JSON. --explain adds amount candidates, category scores, urgency layers and correction stage outcomes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readTranscript(cmd.InOrStdin())
		if err != nil {
			return err
		}

		p, err := initPipeline("extract")
		if err != nil {
			return err
		}

		in := model.Input{Transcript: text, CategoryHint: extractHint, CaseID: extractCaseID}

		var out any
		if extractExplain {
			out = p.RunDetailed(in)
		} else {
			out = p.Run(in)
		}
		return writeJSON(cmd.OutOrStdout(), out)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractText, "text", "", "transcript text")
	extractCmd.Flags().StringVar(&extractFile, "file", "", "path to a transcript file")
	extractCmd.Flags().StringVar(&extractHint, "category-hint", "", "caller-supplied category used for urgency context")
	extractCmd.Flags().StringVar(&extractCaseID, "case-id", "", "identifier attached to log lines")
	extractCmd.Flags().BoolVar(&extractExplain, "explain", false, "include the full extraction trace")
	extractCmd.MarkFlagsMutuallyExclusive("text", "file")
	rootCmd.AddCommand(extractCmd)
}

// readTranscript returns --text, the contents of --file, or stdin.
func readTranscript(stdin io.Reader) (string, error) {
	switch {
	case extractText != "":
		return extractText, nil
	case extractFile != "":
		data, err := os.ReadFile(extractFile)
		if err != nil {
			return "", eris.Wrap(err, "extract: read transcript file")
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", eris.Wrap(err, "extract: read stdin")
		}
		return strings.TrimSpace(string(data)), nil
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "encode output")
	}
	return nil
}
