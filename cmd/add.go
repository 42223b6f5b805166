package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	addStudyName string
	addSiteName  string
	addSiteDesc  string
)

var addCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Add a site's sensor file to a study",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file := args[0]
		if addStudyName == "" {
			return fmt.Errorf("--project is required")
		}
		st, err := openStudy(addStudyName)
		if err != nil {
			return err
		}
		name := addSiteName
		if name == "" {
			name = baseName(file)
		}
		opt, err := datasetOptions()
		if err != nil {
			return err
		}
		site, err := st.AddSite(name, file, addSiteDesc, opt)
		if err != nil {
			return err
		}
		if err := st.Save(); err != nil {
			return err
		}
		fmt.Printf("✓ Site added: %s (%d rows)\n", site.Name, site.Rows)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addStudyName, "project", "p", "", "study name")
	addCmd.Flags().StringVar(&addSiteName, "site", "", "site name (default file name without extension)")
	addCmd.Flags().StringVar(&addSiteDesc, "desc", "", "site description")
	addInputFlags(addCmd)
}
