package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lxp-git/android-system-resource-monitor/internal/daemon"
)

var stopTimeout time.Duration

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the asrm daemon",
	RunE:  runStop,
}

func init() {
	stopCmd.Flags().DurationVar(&stopTimeout, "timeout", 5*time.Second, "how long to wait for the daemon to exit")
}

func runStop(cmd *cobra.Command, args []string) error {
	pid, err := daemon.Stop(daemonPIDFile(), stopTimeout)
	if err != nil {
		return err
	}
	fmt.Printf("asrm daemon stopped (PID: %d)\n", pid)
	return nil
}
