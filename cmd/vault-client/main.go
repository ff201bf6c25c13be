// Command vault-client is a one-shot CLI for the operations of spec §4.5 and
// §4.7: create a company, upload/list/download files, and regenerate keys.
// Every subcommand opens its own connection and closes it when done; there
// is no long-lived client session across invocations.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/webblitchy/securevault/internal/client"
	"github.com/webblitchy/securevault/internal/vault"
)

var rootCmd = &cobra.Command{
	Use:   "vault-client",
	Short: "Client for the multi-tenant encrypted vault",
}

func init() {
	rootCmd.PersistentFlags().String("server", "127.0.0.1:1234", "vault server address")
	_ = viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))

	rootCmd.AddCommand(createCompanyCmd, uploadCmd, listCmd, downloadCmd, regenerateKeyCmd)
}

func userInputs(usernames, passwords []string) ([]vault.UserInput, error) {
	if len(usernames) != len(passwords) {
		return nil, fmt.Errorf("got %d usernames but %d passwords", len(usernames), len(passwords))
	}
	inputs := make([]vault.UserInput, len(usernames))
	for i := range usernames {
		inputs[i] = vault.UserInput{Username: usernames[i], Password: passwords[i]}
	}
	return inputs, nil
}

var createCompanyCmd = &cobra.Command{
	Use:   "create-company NAME",
	Short: "Create a new company with its initial user set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		usernames, _ := cmd.Flags().GetStringSlice("user")
		passwords, _ := cmd.Flags().GetStringSlice("password")
		inputs, err := userInputs(usernames, passwords)
		if err != nil {
			return err
		}

		conn, err := client.Dial(viper.GetString("server"))
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := client.CreateCompany(conn, args[0], inputs); err != nil {
			return err
		}
		fmt.Printf("company %q created with %d users\n", args[0], len(inputs))
		return nil
	},
}

func init() {
	createCompanyCmd.Flags().StringSlice("user", nil, "username (repeatable, paired by position with --password)")
	createCompanyCmd.Flags().StringSlice("password", nil, "password (repeatable, paired by position with --user)")
}

func authFlags(cmd *cobra.Command) {
	cmd.Flags().String("company", "", "company name")
	cmd.Flags().StringSlice("user", nil, "two usernames")
	cmd.Flags().StringSlice("password", nil, "two passwords, paired by position with --user")
	_ = cmd.MarkFlagRequired("company")
}

func authenticate(cmd *cobra.Command) (*client.Session, error) {
	company, _ := cmd.Flags().GetString("company")
	users, _ := cmd.Flags().GetStringSlice("user")
	passwords, _ := cmd.Flags().GetStringSlice("password")
	if len(users) != 2 || len(passwords) != 2 {
		return nil, fmt.Errorf("authentication needs exactly two --user and two --password flags")
	}

	conn, err := client.Dial(viper.GetString("server"))
	if err != nil {
		return nil, err
	}
	sess, err := client.Authenticate(conn, company, users[0], users[1], passwords[0], passwords[1])
	if err != nil {
		conn.Close()
		return nil, err
	}
	return sess, nil
}

var uploadCmd = &cobra.Command{
	Use:   "upload PATH",
	Short: "Upload a file to the authenticated company's vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := authenticate(cmd)
		if err != nil {
			return err
		}
		defer sess.Close()

		body, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		if err := sess.Upload(args[0], body); err != nil {
			return err
		}
		fmt.Printf("uploaded %s\n", args[0])
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list-files",
	Short: "List the authenticated company's files",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := authenticate(cmd)
		if err != nil {
			return err
		}
		defer sess.Close()

		files, err := sess.ListFiles()
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Printf("%s\t%s\n", f.UUID, f.Name)
		}
		return nil
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download UUID OUTPATH",
	Short: "Download and decrypt a file by its UUID",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := authenticate(cmd)
		if err != nil {
			return err
		}
		defer sess.Close()

		body, err := sess.Download(args[0])
		if err != nil {
			return err
		}
		if err := os.WriteFile(args[1], body, 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", args[1], err)
		}
		fmt.Printf("downloaded %s to %s\n", args[0], args[1])
		return nil
	},
}

var regenerateKeyCmd = &cobra.Command{
	Use:   "regenerate-keys",
	Short: "Re-split the group secret around a new user set",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := authenticate(cmd)
		if err != nil {
			return err
		}
		defer sess.Close()

		newUsers, _ := cmd.Flags().GetStringSlice("new-user")
		newPasswords, _ := cmd.Flags().GetStringSlice("new-password")
		inputs, err := userInputs(newUsers, newPasswords)
		if err != nil {
			return err
		}
		if err := sess.RegenerateKey(inputs); err != nil {
			return err
		}
		fmt.Printf("keys regenerated for %d users\n", len(inputs))
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{uploadCmd, listCmd, downloadCmd, regenerateKeyCmd} {
		authFlags(cmd)
	}
	regenerateKeyCmd.Flags().StringSlice("new-user", nil, "new username set (repeatable)")
	regenerateKeyCmd.Flags().StringSlice("new-password", nil, "new password set, paired by position with --new-user")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
