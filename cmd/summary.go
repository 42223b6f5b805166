package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/solarscope-cli/internal/analysis"
	"github.com/KaramelBytes/solarscope-cli/internal/utils"
)

var (
	sumStudy  string
	sumSite   string
	sumOutput string
	sumFormat string
)

var summaryCmd = &cobra.Command{
	Use:   "summary <file>",
	Short: "Describe every column of a sensor file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		t, err := loadTable(path)
		if err != nil {
			return err
		}
		s, err := analysis.Summarize(t)
		if err != nil {
			return err
		}
		body, ext, err := encodeSummary(s, sumFormat)
		if err != nil {
			return err
		}

		// Decide where to write: --output path, or attach to study, or stdout
		written := false
		if sumOutput != "" {
			if err := writeOutput(sumOutput, body); err != nil {
				return err
			}
			fmt.Printf("✓ Wrote summary to %s\n", sumOutput)
			written = true
		}
		if sumStudy != "" {
			st, err := openStudy(sumStudy)
			if err != nil {
				return err
			}
			site := sumSite
			if site == "" {
				site = baseName(path)
			}
			out, err := utils.WriteFileIn(st.ArtifactsDir(), utils.FileStem(site)+".summary"+ext, body)
			if err != nil {
				return fmt.Errorf("write study summary: %w", err)
			}
			st.AddArtifact("summary", out, "Summary of "+filepath.Base(path), site)
			if err := st.Save(); err != nil {
				return err
			}
			fmt.Printf("✓ Added summary to study '%s' as %s\n", st.Name, filepath.Base(out))
			written = true
		}
		if !written {
			fmt.Print(string(body))
		}
		return nil
	},
}

// encodeSummary renders s in the requested format and returns the matching
// file extension.
func encodeSummary(s *analysis.Summary, format string) ([]byte, string, error) {
	switch format {
	case "", "markdown", "md":
		return []byte(s.Markdown()), ".md", nil
	case "yaml", "yml":
		b, err := yaml.Marshal(s)
		if err != nil {
			return nil, "", fmt.Errorf("marshal yaml: %w", err)
		}
		return b, ".yaml", nil
	case "json":
		b, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return nil, "", fmt.Errorf("marshal json: %w", err)
		}
		return append(b, '\n'), ".json", nil
	}
	return nil, "", fmt.Errorf("unsupported --format: %s (use markdown|yaml|json)", format)
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().StringVarP(&sumStudy, "project", "p", "", "study name to attach the summary to")
	summaryCmd.Flags().StringVar(&sumSite, "site", "", "site name when attaching (default file name)")
	summaryCmd.Flags().StringVarP(&sumOutput, "output", "o", "", "optional path to write the summary")
	summaryCmd.Flags().StringVarP(&sumFormat, "format", "f", "markdown", "output format: markdown|yaml|json")
	addInputFlags(summaryCmd)
}
