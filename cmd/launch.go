package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fastmc/fastmc/internals/launcher"
	"github.com/fastmc/fastmc/internals/minecraft"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var launchFlags struct {
	java   string
	ram    int
	width  int
	height int
	demo   bool
	dryRun bool
}

func init() {
	launchCmd.Flags().StringVar(&launchFlags.java, "java", "", "Java executable to launch with")
	launchCmd.Flags().IntVar(&launchFlags.ram, "ram", 0, "Max RAM in MiB (0 picks a value based on system memory)")
	launchCmd.Flags().IntVar(&launchFlags.width, "width", 0, "Window width")
	launchCmd.Flags().IntVar(&launchFlags.height, "height", 0, "Window height")
	launchCmd.Flags().BoolVar(&launchFlags.demo, "demo", false, "Launch in demo mode")
	launchCmd.Flags().BoolVar(&launchFlags.dryRun, "dry-run", false, "Print the assembled command instead of launching")
	rootCmd.AddCommand(launchCmd)
}

var launchCmd = &cobra.Command{
	Use:     "launch [version]",
	Aliases: []string{"run", "start", "play"},
	Short:   "Launch a Minecraft version",
	Args:    cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		manager := newSession()
		ctx := context.Background()

		account, ok := manager.Active()
		if !ok {
			logger.Fail("No active account. Run \"fastmc login\" first.")
		}

		gameDir := viper.GetString("game_dir")
		remote := minecraft.NewRemoteSource()
		source := &minecraft.CachedSource{
			Local:  &minecraft.LocalSource{Dir: filepath.Join(gameDir, "versions")},
			Remote: remote,
		}

		versionID := ""
		if len(args) == 1 {
			versionID = args[0]
		} else {
			latest, err := remote.LatestRelease(ctx)
			if err != nil {
				logger.Fail("Could not look up the latest release: " + err.Error())
			}
			versionID = latest
		}

		ram := launchFlags.ram
		if ram == 0 {
			ram = viper.GetInt("ram")
		}

		l := &launcher.Launcher{
			Session: manager,
			Source:  source,
			Fetcher: &minecraft.DirFetcher{Dir: filepath.Join(gameDir, "libraries")},
			Settings: launcher.Settings{
				GameDir:         gameDir,
				AssetsDir:       filepath.Join(gameDir, "assets"),
				LibrariesDir:    filepath.Join(gameDir, "libraries"),
				VersionsDir:     filepath.Join(gameDir, "versions"),
				NativesDir:      filepath.Join(gameDir, "natives", versionID),
				JavaBin:         launchFlags.java,
				MaxRAMMiB:       ram,
				Width:           launchFlags.width,
				Height:          launchFlags.height,
				Demo:            launchFlags.demo,
				LauncherName:    "fastmc",
				LauncherVersion: Version,
			},
		}

		logger.Headline("Launching " + versionID)
		command, err := l.AssembleLaunch(ctx, versionID, account)
		if err != nil {
			failAuth(err)
		}

		if launchFlags.dryRun {
			fmt.Println(command.Executable)
			for _, arg := range command.Args {
				fmt.Println("  " + arg)
			}
			return
		}

		if len(command.Natives) != 0 {
			logger.Log(fmt.Sprintf("%d native libraries need extraction to %s", len(command.Natives), l.Settings.NativesDir))
		}

		if err := launcher.Run(command, nil, nil); err != nil {
			logger.Fail("Minecraft exited with a problem: " + err.Error())
		}
	},
}
