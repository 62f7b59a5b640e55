package cmd

import (
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/yuanquanya/netmc-launcher/launchercore"
)

var (
	debug bool
	root  string

	core *launchercore.Core
	log  hclog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "netmc-launcher",
	Short: "netmc-launcher launches vanilla Minecraft clients",
	Long:  `netmc-launcher fetches, verifies and launches vanilla Minecraft clients against a self-managed workspace, provisioning a matching Java runtime on demand.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := hclog.Info
		if debug {
			level = hclog.Debug
		}
		log = hclog.New(&hclog.LoggerOptions{Name: "netmc-launcher", Level: level})
		core = launchercore.New(log)
		return core.Init(root)
	},
}

func init() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug mode")
	rootCmd.PersistentFlags().StringVarP(&root, "root", "r", home+"/.netmc-launcher", "Workspace root directory")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
