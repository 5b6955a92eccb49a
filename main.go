package main

import (
	"os"

	"github.com/lxp-git/android-system-resource-monitor/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
