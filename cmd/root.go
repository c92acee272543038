package cmd

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/fastmc/fastmc/internals/auth"
	"github.com/fastmc/fastmc/internals/cmdlog"
	"github.com/fastmc/fastmc/internals/credentials"
	"github.com/fastmc/fastmc/internals/ownhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"
)

// Version is set by the build
var Version = "dev"

// DefaultClientID is the public oauth client id used for the device
// code login. Can be overridden with the client_id config key.
const DefaultClientID = "7e7a1f68-54e2-4ab9-9339-3a0f7b0a9efc"

var logger = cmdlog.New()

var (
	cfgFile   string
	globalDir string

	credStore *credentials.Store
	session   *auth.SessionManager
)

var rootCmd = &cobra.Command{
	Version: Version,
	Use:     "fastmc",
	Short:   "A fast Minecraft launcher",
	Long:    "Log in, pick a version, play",

	Example: `
  fastmc login
  fastmc account create-offline Steve
  fastmc launch 1.20.4`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}
	globalDir = filepath.Join(home, ".fastmc")

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.fastmc/config.toml)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(globalDir)
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("fastmc")
	viper.AutomaticEnv()

	viper.SetDefault("client_id", DefaultClientID)
	viper.SetDefault("game_dir", filepath.Join(globalDir, "minecraft"))
	viper.SetDefault("ram", 0)

	// a missing config file just means defaults
	_ = viper.ReadInConfig()
}

// newSession wires up the credential store, the device auth flow and
// the session manager. Commands call this instead of touching globals
// so config is read first.
func newSession() *auth.SessionManager {
	if session != nil {
		return session
	}

	credStore = credentials.New(globalDir)

	// the identity provider rate limits per client, stay well below that
	providerClient := ownhttp.NewThrottled(rate.NewLimiter(2, 4))
	flow := auth.NewDeviceAuthFlow(providerClient, viper.GetString("client_id"))
	resolver := auth.NewProfileResolver(http.DefaultClient)

	manager, err := auth.NewSessionManager(credStore, flow, resolver, globalDir)
	if err != nil {
		logger.Fail("Could not read account list: " + err.Error())
	}
	session = manager
	return session
}
