package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lxp-git/android-system-resource-monitor/internal/config"
	"github.com/lxp-git/android-system-resource-monitor/internal/daemon"
)

var runDaemon bool

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start background capture",
	Long: `Starts a capture loop that only writes the log and the journal.
Without --daemon it runs in the foreground.`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVar(&runDaemon, "daemon", false, "run as background daemon")
}

func daemonPIDFile() string {
	if p := config.Global.Daemon.PIDFile; p != "" {
		return p
	}
	return daemon.DefaultPIDFile()
}

func runStart(cmd *cobra.Command, args []string) error {
	pidFile := daemonPIDFile()

	if pid, ok := daemon.Running(pidFile); ok {
		return fmt.Errorf("asrm daemon already running (PID: %d)", pid)
	}

	if !runDaemon {
		fmt.Println("Starting asrm capture in the foreground...")
		fmt.Println("Use --daemon flag to run in background.")
		watchQuiet = true
		watchPIDFile = pidFile
		return runWatch(cmd, args)
	}

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("finding executable: %w", err)
	}

	daemonArgs := []string{"watch", "--quiet", "--pid-file", pidFile}
	if cfgFile != "" {
		daemonArgs = append(daemonArgs, "--config", cfgFile)
	}
	if verbose {
		daemonArgs = append(daemonArgs, "--verbose")
	}

	proc := exec.Command(executable, daemonArgs...)
	proc.Stdout = nil
	proc.Stderr = nil
	proc.Stdin = nil
	proc.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := proc.Start(); err != nil {
		return fmt.Errorf("starting daemon: %w", err)
	}

	// The child writes the pid file itself; wait briefly so a failed start
	// is reported here.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if pid, ok := daemon.Running(pidFile); ok && pid == proc.Process.Pid {
			break
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("daemon (PID %d) did not write %s; see the log file", proc.Process.Pid, pidFile)
		}
		time.Sleep(50 * time.Millisecond)
	}
	proc.Process.Release()

	fmt.Printf("asrm daemon started (PID: %d)\n", proc.Process.Pid)
	fmt.Printf("PID file: %s\n", pidFile)
	fmt.Println("Use 'asrm stop' to stop the daemon.")
	fmt.Println("Use 'asrm logs --follow' to watch the log output.")

	return nil
}
