package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/solarscope-cli/internal/utils"
)

var (
	listStudies   bool
	listSites     bool
	listStudyName string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List studies or the sites of a study",
	RunE: func(cmd *cobra.Command, args []string) error {
		if listStudies == listSites { // either both true or both false
			return fmt.Errorf("specify exactly one of --studies or --sites")
		}
		if listStudies {
			return listAllStudies()
		}
		st, err := openStudy(listStudyName)
		if err != nil {
			return err
		}
		fmt.Print(st.Overview())
		return nil
	},
}

func listAllStudies() error {
	root, err := defaultStudiesDir()
	if err != nil {
		return err
	}
	dirs, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	found := false
	for _, e := range dirs {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, e.Name(), utils.StudyFile)); err == nil {
			fmt.Printf("- %s\n", e.Name())
			found = true
		}
	}
	if !found {
		fmt.Println("(no studies)")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listStudies, "studies", false, "list studies")
	listCmd.Flags().BoolVar(&listSites, "sites", false, "list sites and artifacts of a study")
	listCmd.Flags().StringVarP(&listStudyName, "project", "p", "", "study name for --sites")
}
