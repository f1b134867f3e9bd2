package users

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/crucial707/studybuddy/cmd/cli/config"
	"github.com/crucial707/studybuddy/cmd/cli/output"
	"github.com/crucial707/studybuddy/cmd/cli/root"
	"github.com/crucial707/studybuddy/internal/auth"
	"github.com/crucial707/studybuddy/internal/repo"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// ==========================
// CLI Command Init
// ==========================
func InitUsers(rootCmd *cobra.Command) {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage the user file",
		Long: `Add or list accounts in users.csv under the data directory.
Accounts added here can log in to the web app straight away.`,
	}

	usersCmd.AddCommand(addUserCmd(), listUsersCmd())
	rootCmd.AddCommand(usersCmd)
}

func openStore() (*repo.FileUserRepo, error) {
	return repo.NewFileUserRepo(config.Path(root.DataDir, "users.csv"))
}

// ==========================
// Add User
// ==========================
func addUserCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a user",
		Long:  "Add a user. The password is prompted for when --password is not given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				p, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				password = p
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			svc := auth.NewService(store, config.PasswordMode())
			if err := svc.SignUp(context.Background(), username, password); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "User %s added.\n", strings.TrimSpace(username))
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username to add")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when empty)")

	return cmd
}

// readPassword prompts without echo on a terminal and reads one line otherwise.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	fmt.Fprint(prompt, "Password: ")
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ==========================
// List Users
// ==========================
func listUsersCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			users, err := store.LoadUsers(context.Background())
			if err != nil {
				return err
			}
			sorted := repo.SortedUsers(users)

			if asJSON {
				return output.RenderJSON(cmd.OutOrStdout(), sorted)
			}

			rows := make([][]interface{}, 0, len(sorted))
			for i, u := range sorted {
				rows = append(rows, []interface{}{i + 1, u.Username})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"#", "Username"}, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print users as JSON")

	return cmd
}
