package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	removeStudyName string
	removeSiteName  string
)

var removeCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a site from a study",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if removeSiteName == "" {
			return fmt.Errorf("--site is required")
		}
		st, err := openStudy(removeStudyName)
		if err != nil {
			return err
		}
		if err := st.RemoveSite(removeSiteName); err != nil {
			return err
		}
		if err := st.Save(); err != nil {
			return err
		}
		fmt.Printf("✓ Site removed: %s (study %s)\n", removeSiteName, st.RootDir())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
	removeCmd.Flags().StringVarP(&removeStudyName, "project", "p", "", "study name (default the study in the working directory)")
	removeCmd.Flags().StringVar(&removeSiteName, "site", "", "site name to remove")
}
