package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// version is the canopy release being built. Bump it when tagging.
const version = "0.1.0"

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the canopy version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("canopy %s (%s, %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
