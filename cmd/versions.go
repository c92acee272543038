package cmd

import (
	"context"
	"fmt"

	"github.com/fastmc/fastmc/internals/minecraft"
	"github.com/jwalton/gchalk"
	"github.com/spf13/cobra"
)

var versionsFlags struct {
	all bool
}

func init() {
	versionsCmd.Flags().BoolVarP(&versionsFlags.all, "all", "a", false, "Include snapshots and old versions")
	rootCmd.AddCommand(versionsCmd)
}

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List launchable Minecraft versions",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		remote := minecraft.NewRemoteSource()
		versions, err := remote.Versions(context.Background())
		if err != nil {
			logger.Fail("Could not fetch the version list: " + err.Error())
		}

		latest, _ := remote.LatestRelease(context.Background())
		for _, v := range versions {
			if !versionsFlags.all && v.Type != "release" {
				continue
			}
			line := v.ID
			if v.ID == latest {
				line = gchalk.Bold(line) + gchalk.Dim(" (latest)")
			}
			fmt.Println(line)
		}
	},
}
