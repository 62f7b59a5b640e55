package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yuanquanya/netmc-launcher/internal/eventbus"
	"github.com/yuanquanya/netmc-launcher/internal/launch"
)

var (
	launchUsername  string
	launchMemoryMB  int
	launchCustomCmd string
	launchPriority  string
)

var launchCmd = &cobra.Command{
	Use:   "launch [version]",
	Short: "Launch a Minecraft version with an installed compatible Java runtime",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		core.Subscribe(eventbus.LaunchLog, func(payload any) {
			fmt.Println(payload)
		})

		code, err := core.Launch(args[0], launchUsername, launchMemoryMB, launchCustomCmd, launch.Priority(launchPriority))
		if err != nil {
			return err
		}
		if code == launch.ExitJavaMissing {
			return fmt.Errorf("no compatible java runtime installed; run `netmc-launcher java install <major>`")
		}
		return nil
	},
}

func init() {
	launchCmd.Flags().StringVarP(&launchUsername, "username", "u", "Player", "Offline player name")
	launchCmd.Flags().IntVarP(&launchMemoryMB, "memory", "m", 2048, "Maximum heap size in MB")
	launchCmd.Flags().StringVarP(&launchCustomCmd, "pre-launch-command", "c", "", "Shell command to run before launching")
	launchCmd.Flags().StringVarP(&launchPriority, "priority", "p", string(launch.PriorityNormal), "Process priority: Low, Normal, High")
	rootCmd.AddCommand(launchCmd)
}
