package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List available Minecraft versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		versions, err := core.ListVersions()
		if err != nil {
			return err
		}
		for _, v := range versions {
			fmt.Printf("%s\t%s\n", v.ID, v.Type)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionsCmd)
}
