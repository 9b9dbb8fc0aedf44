package health

import (
	"fmt"
	"text/tabwriter"

	"github.com/resonatehq/console/internal/app/console"
	"github.com/resonatehq/console/internal/app/monitor"
	"github.com/resonatehq/console/internal/operations"
	"github.com/spf13/cobra"
)

var backends = []struct {
	name string
	key  operations.Key
}{
	{name: "node", key: operations.CheckNodeHealth},
	{name: "python", key: operations.CheckPythonHealth},
}

func NewCmd(c *console.Console, cfg *monitor.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the health of both backends",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := monitor.New(cfg, map[string]monitor.Prober{
				"node":   c.Users,
				"python": c.States,
			})
			if err != nil {
				return err
			}

			err = m.Probe(cmd.Context())
			prettyPrintHealth(cmd, c)

			return err
		},
	}

	return cmd
}

func prettyPrintHealth(cmd *cobra.Command, c *console.Console) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(w, "%v\t%v\n", "BACKEND", "STATUS")
	for _, b := range backends {
		status := "unknown"
		if record, ok := c.Store.Get(b.key); ok {
			if record.Error != nil {
				status = *record.Error
			} else if record.Completed() {
				status = fmt.Sprint(record.Data)
			}
		}

		_, _ = fmt.Fprintf(w, "%v\t%v\n", b.name, status)
	}

	_ = w.Flush()
}
