// Package commands implements the CLI commands for the forge build pipeline.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/forge/internal/app"
	"go.trai.ch/forge/internal/build"
)

// CLI represents the command line interface for forge.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
	args    []string
}

// Application represents the application logic interface.
type Application interface {
	Build(ctx context.Context, opts app.RunOptions) error
	Watch(ctx context.Context, opts app.RunOptions) error
	RunTasks(ctx context.Context, names []string, opts app.RunOptions) error
	TaskNames(opts app.RunOptions) ([]string, error)
	ListTasks(opts app.RunOptions) ([]app.TaskInfo, error)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "forge",
		Short:         "A file-watching asset pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
		Args:          cobra.ArbitraryArgs,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	flags := rootCmd.PersistentFlags()
	flags.StringP("mode", "m", "", "Build mode: dev or prod")
	flags.IntP("concurrency", "j", 0, "Maximum number of steps running at once")
	flags.StringP("output-mode", "o", "", "Output mode: auto, tui, or linear")
	flags.Bool("ci", false, "Use linear output mode (shorthand for --output-mode=linear)")
	flags.StringP("config", "c", "", "Project directory or path to forge.yaml")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	// A bare task name runs that task even when its command was not registered.
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return c.app.RunTasks(cmd.Context(), args, c.runOptions(cmd))
	}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newTasksCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute registers one command per task and runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.registerTaskCommands()
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.args = args
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// registerTaskCommands adds a subcommand for every task of the project.
// A project that fails to load registers nothing; the error surfaces when a command runs.
func (c *CLI) registerTaskCommands() {
	args := c.args
	if args == nil {
		args = os.Args[1:]
	}

	names, err := c.app.TaskNames(app.RunOptions{Config: configFromArgs(args)})
	if err != nil {
		return
	}

	for _, name := range names {
		if existing, _, findErr := c.rootCmd.Find([]string{name}); findErr == nil && existing != c.rootCmd {
			continue
		}
		c.rootCmd.AddCommand(c.newTaskCmd(name))
	}
}

// configFromArgs extracts the --config value before cobra parses the command line.
func configFromArgs(args []string) string {
	for i, arg := range args {
		switch {
		case arg == "--":
			return ""
		case arg == "--config" || arg == "-c":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(arg, "--config="):
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	return ""
}

// runOptions collects the global flags of cmd.
func (c *CLI) runOptions(cmd *cobra.Command) app.RunOptions {
	mode, _ := cmd.Flags().GetString("mode")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	outputMode, _ := cmd.Flags().GetString("output-mode")
	ci, _ := cmd.Flags().GetBool("ci")
	config, _ := cmd.Flags().GetString("config")

	// If --ci is set, override output-mode to "linear"
	if ci {
		outputMode = "linear"
	}

	return app.RunOptions{
		Config:      config,
		Mode:        mode,
		Concurrency: concurrency,
		OutputMode:  outputMode,
		CI:          ci,
	}
}
