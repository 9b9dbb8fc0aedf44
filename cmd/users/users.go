package users

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/resonatehq/console/cmd/util"
	"github.com/resonatehq/console/internal/app/console"
	"github.com/resonatehq/console/internal/client"
	"github.com/resonatehq/console/internal/operations"
	"github.com/resonatehq/console/pkg/user"
	"github.com/spf13/cobra"
)

func NewCmd(c *console.Console) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Users of the node backend",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	// Add subcommands
	cmd.AddCommand(ListUsersCmd(c))
	cmd.AddCommand(CreateUserCmd(c))

	return cmd
}

func ListUsersCmd(c *console.Console) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			c.Users.FetchUsers(cmd.Context())

			record, ok := c.Store.Get(operations.FetchUsers)
			if !ok {
				return errors.New("users were not fetched")
			}
			if record.Error != nil {
				return errors.New(*record.Error)
			}

			list, _ := record.Data.(user.List)

			if output == "json" {
				b, err := json.MarshalIndent(list.Users, "", "  ")
				if err != nil {
					return err
				}

				cmd.Println(string(b))
				return nil
			}

			prettyPrintUsers(cmd, list.Users...)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format, can be one of: json")

	return cmd
}

var createUserExample = `
# Create a user
console users create --first-name John --last-name Doe --date-of-birth 1990-01-01`

func CreateUserCmd(c *console.Console) *cobra.Command {
	u := &user.User{}

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a user",
		Example: createUserExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := util.Validate(u); err != nil {
				return err
			}

			if _, err := c.Users.SaveUser(cmd.Context(), u); err != nil {
				return fmt.Errorf("error saving user: %s", client.Message(err))
			}

			cmd.Println("User saved successfully!")
			return nil
		},
	}

	cmd.Flags().StringVar(&u.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&u.MiddleName, "middle-name", "", "middle name")
	cmd.Flags().StringVar(&u.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&u.DateOfBirth, "date-of-birth", "", "date of birth (YYYY-MM-DD)")

	return cmd
}

func prettyPrintUsers(cmd *cobra.Command, users ...user.User) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	formatted := func(row ...any) {
		_, _ = fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", row...)
	}

	formatted(
		"FIRST NAME",
		"MIDDLE NAME",
		"LAST NAME",
		"DATE OF BIRTH",
	)

	for _, u := range users {
		formatted(
			u.FirstName,
			u.MiddleName,
			u.LastName,
			u.DateOfBirth,
		)
	}

	_ = w.Flush()
}
