package commands

import "github.com/spf13/cobra"

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Build, then rebuild on every change and serve the output with live reload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noServe, _ := cmd.Flags().GetBool("no-serve")
			addr, _ := cmd.Flags().GetString("addr")

			opts := c.runOptions(cmd)
			opts.NoServe = noServe
			opts.Addr = addr
			return c.app.Watch(cmd.Context(), opts)
		},
	}
	cmd.Flags().Bool("no-serve", false, "Do not start the live-reload server")
	cmd.Flags().String("addr", "", "Address of the live-reload server (default from settings)")
	return cmd
}
