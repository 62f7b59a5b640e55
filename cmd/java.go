package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/yuanquanya/netmc-launcher/internal/javainstall"
)

var javaCmd = &cobra.Command{
	Use:   "java",
	Short: "Inspect and manage Java runtimes",
}

var javaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List Java runtimes discovered on this machine",
	RunE: func(cmd *cobra.Command, args []string) error {
		core.RefreshJavaListSync()
		for _, e := range core.GetJavaList() {
			managed := ""
			if e.IsLauncherManaged {
				managed = " (managed)"
			}
			fmt.Printf("java %d\t%s\t%s%s\n", e.MajorVersion, e.Vendor, e.Path, managed)
		}
		return nil
	},
}

var javaInstallCmd = &cobra.Command{
	Use:   "install [major]",
	Short: "Install a managed Java runtime for the given major version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		major, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid java major version %q", args[0])
		}

		core.InstallJava(major)
		for {
			status := core.JavaStatus()
			fmt.Printf("\r[%s] %d%% %s", status.Phase, status.Progress, status.Message)
			if !status.Installing && status.Phase == javainstall.PhaseDone {
				fmt.Println()
				if !status.Success {
					return fmt.Errorf("install failed: %s", status.Error)
				}
				return nil
			}
			time.Sleep(500 * time.Millisecond)
		}
	},
}

var javaStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current Java install status",
	RunE: func(cmd *cobra.Command, args []string) error {
		status := core.JavaStatus()
		fmt.Printf("installing: %v\n", status.Installing)
		fmt.Printf("phase:      %s\n", status.Phase)
		fmt.Printf("progress:   %d%%\n", status.Progress)
		fmt.Printf("message:    %s\n", status.Message)
		fmt.Printf("success:    %v\n", status.Success)
		if status.Error != "" {
			fmt.Printf("error:      %s\n", status.Error)
		}
		return nil
	},
}

var javaRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rescan for Java runtimes and wait for the scan to complete",
	RunE: func(cmd *cobra.Command, args []string) error {
		core.RefreshJavaListSync()
		fmt.Printf("found %d java runtime(s)\n", len(core.GetJavaList()))
		return nil
	},
}

func init() {
	javaCmd.AddCommand(javaListCmd, javaInstallCmd, javaStatusCmd, javaRefreshCmd)
	rootCmd.AddCommand(javaCmd)
}
