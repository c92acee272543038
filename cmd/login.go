package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fastmc/fastmc/internals/auth"
	"github.com/jwalton/gchalk"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"signin"},
	Short:   "Sign in with your Microsoft account",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		login()
	},
}

func login() {
	manager := newSession()
	ctx := context.Background()

	deviceSession, err := manager.LoginMicrosoft(ctx)
	if err != nil {
		failAuth(err)
	}

	logger.Headline("Sign in with your Microsoft account")
	if deviceSession.Message != "" {
		logger.Info(deviceSession.Message)
	} else {
		logger.Info(fmt.Sprintf(
			"Visit %s and enter the code %s",
			gchalk.Underline(deviceSession.VerificationURI),
			gchalk.Bold(deviceSession.UserCode),
		))
	}

	wait := spinner.New(spinner.CharSets[9], 300*time.Millisecond)
	wait.Suffix = " Waiting for you to sign in …"
	wait.Start()
	defer wait.Stop()

	// the flow never blocks, we drive it on a plain ticker
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		outcome, err := manager.CheckLogin(ctx, deviceSession)
		if err != nil {
			wait.Stop()
			failAuth(err)
		}

		switch outcome.State {
		case auth.StatePending:
			continue
		case auth.StateAuthorized:
			wait.Stop()
			account, _ := manager.Active()
			logger.Info("Signed in as " + gchalk.Bold(account.Name))
			return
		case auth.StateDenied:
			wait.Stop()
			logger.Fail("Sign in was declined: " + outcome.Reason)
		case auth.StateExpired:
			wait.Stop()
			logger.Fail("The sign in code expired. Run \"fastmc login\" to get a new one.")
		}
	}
}

// failAuth prints auth errors with a usable hint
func failAuth(err error) {
	switch {
	case errors.Is(err, auth.ErrReauthRequired):
		logger.Fail("Your session expired. Run \"fastmc login\" to sign in again.")
	case errors.Is(err, auth.ErrNetworkFailure):
		logger.Fail("Could not reach the login service. Are you online?")
	default:
		logger.Fail(err.Error())
	}
}
