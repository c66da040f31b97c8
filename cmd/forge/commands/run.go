package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [tasks...]",
		Short: "Run specified tasks",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			return c.runTasks(cmd, args)
		},
	}
	cmd.Flags().BoolP("with-deps", "d", false, "Also run the predecessors of the named tasks")
	return cmd
}

// newTaskCmd returns the shorthand command for a single task.
func (c *CLI) newTaskCmd(name string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: "Run the " + name + " task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runTasks(cmd, []string{name})
		},
	}
	cmd.Flags().BoolP("with-deps", "d", false, "Also run the predecessors of the task")
	return cmd
}

func (c *CLI) runTasks(cmd *cobra.Command, names []string) error {
	withDeps, _ := cmd.Flags().GetBool("with-deps")

	opts := c.runOptions(cmd)
	opts.WithDeps = withDeps
	return c.app.RunTasks(cmd.Context(), names, opts)
}
