package states

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/resonatehq/console/cmd/util"
	"github.com/resonatehq/console/internal/app/console"
	"github.com/resonatehq/console/internal/client"
	"github.com/resonatehq/console/internal/operations"
	"github.com/resonatehq/console/pkg/state"
	"github.com/spf13/cobra"
)

func NewCmd(c *console.Console) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "states",
		Aliases: []string{"state"},
		Short:   "States of the python backend",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	// Add subcommands
	cmd.AddCommand(ListStatesCmd(c))
	cmd.AddCommand(CreateStateCmd(c))

	return cmd
}

func ListStatesCmd(c *console.Console) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List states",
		RunE: func(cmd *cobra.Command, args []string) error {
			c.States.FetchStates(cmd.Context())

			record, ok := c.Store.Get(operations.FetchStates)
			if !ok {
				return errors.New("states were not fetched")
			}
			if record.Error != nil {
				return errors.New(*record.Error)
			}

			states, _ := record.Data.([]state.State)

			if output == "json" {
				b, err := json.MarshalIndent(states, "", "  ")
				if err != nil {
					return err
				}

				cmd.Println(string(b))
				return nil
			}

			prettyPrintStates(cmd, states...)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format, can be one of: json")

	return cmd
}

var createStateExample = `
# Create an active state
console states create --name "In Progress" --sort-order 1

# Create an inactive state with an explicit creation date
console states create --name Archived --active=false --created-at 2024-01-01`

func CreateStateCmd(c *console.Console) *cobra.Command {
	s := state.New()

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a state",
		Example: createStateExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := util.Validate(s); err != nil {
				return err
			}

			if _, err := c.States.SaveState(cmd.Context(), s); err != nil {
				return fmt.Errorf("error saving state: %s", client.Message(err))
			}

			cmd.Println("State saved successfully!")
			return nil
		},
	}

	cmd.Flags().StringVar(&s.Name, "name", "", "state name")
	cmd.Flags().StringVar(&s.Description, "description", "", "state description")
	cmd.Flags().BoolVar(&s.IsActive, "active", s.IsActive, "state is active")
	cmd.Flags().IntVar(&s.SortOrder, "sort-order", 0, "position of the state")
	cmd.Flags().StringVar(&s.CreatedAt, "created-at", time.Now().Format(time.DateOnly), "creation date (YYYY-MM-DD)")

	return cmd
}

func prettyPrintStates(cmd *cobra.Command, states ...state.State) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	formatted := func(row ...any) {
		_, _ = fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\t%v\n", row...)
	}

	formatted(
		"ID",
		"NAME",
		"ACTIVE",
		"SORT ORDER",
		"CREATED AT",
		"DESCRIPTION",
	)

	for _, s := range states {
		formatted(
			s.Id,
			s.Name,
			s.IsActive,
			s.SortOrder,
			s.CreatedAt,
			s.Description,
		)
	}

	_ = w.Flush()
}
