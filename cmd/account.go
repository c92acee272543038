package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jwalton/gchalk"
	"github.com/spf13/cobra"
)

func init() {
	accountCmd.AddCommand(accountCreateOfflineCmd)
	accountCmd.AddCommand(accountUseCmd)
	accountCmd.AddCommand(accountRemoveCmd)
	rootCmd.AddCommand(accountCmd)
}

var accountCmd = &cobra.Command{
	Use:     "account",
	Aliases: []string{"accounts"},
	Short:   "List and manage accounts",
	Run: func(cmd *cobra.Command, args []string) {
		manager := newSession()
		accounts := manager.Accounts()
		if len(accounts) == 0 {
			logger.Info("No accounts yet. Try \"fastmc login\" or \"fastmc account create-offline <name>\"")
			return
		}

		active, hasActive := manager.Active()
		for _, account := range accounts {
			marker := "  "
			name := account.Name
			if hasActive && account.ID == active.ID {
				marker = gchalk.Green("➜ ")
				name = gchalk.Bold(name)
			}
			fmt.Printf("%s%s %s %s\n", marker, name, gchalk.Dim(string(account.Kind)), gchalk.Dim(account.ID.String()))
		}
	},
}

var accountCreateOfflineCmd = &cobra.Command{
	Use:   "create-offline <name>",
	Short: "Create an offline account (no Microsoft login)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		manager := newSession()
		account, err := manager.CreateOffline(args[0])
		if err != nil {
			logger.Fail(err.Error())
		}
		logger.Info("Created offline account " + gchalk.Bold(account.Name) + " (now active)")
	},
}

var accountUseCmd = &cobra.Command{
	Use:   "use <account-id>",
	Short: "Switch the active account",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		manager := newSession()
		id, err := uuid.Parse(args[0])
		if err != nil {
			logger.Fail("Not an account id: " + args[0])
		}
		if err := manager.SetActive(id); err != nil {
			failAuth(err)
		}
		account, _ := manager.Active()
		logger.Info("Active account is now " + gchalk.Bold(account.Name))
	},
}

var accountRemoveCmd = &cobra.Command{
	Use:     "remove <account-id>",
	Aliases: []string{"rm", "delete"},
	Short:   "Remove an account and its stored credentials",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		manager := newSession()
		id, err := uuid.Parse(args[0])
		if err != nil {
			logger.Fail("Not an account id: " + args[0])
		}
		if err := manager.Delete(id); err != nil {
			failAuth(err)
		}
		logger.Info("Account removed")
	},
}
