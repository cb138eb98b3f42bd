// Package cli implements the todoctl command tree.
package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/example/todo-graphql-demo/client"
	"github.com/example/todo-graphql-demo/config"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// options carries the state shared by every subcommand.
type options struct {
	v          *viper.Viper
	configFile string
}

// settings resolves endpoint and timeout from flags, env and the config file.
func (o *options) settings() (*config.Client, error) {
	return config.LoadClient(o.v, o.configFile)
}

func (o *options) client() (*client.Client, error) {
	cfg, err := o.settings()
	if err != nil {
		return nil, err
	}
	return client.New(cfg.Endpoint, cfg.Timeout), nil
}

// NewRootCommand builds the todoctl command tree.
func NewRootCommand() *cobra.Command {
	o := &options{v: config.NewClientViper()}

	root := &cobra.Command{
		Use:   "todoctl",
		Short: "Manage tasks on a todo GraphQL server",
		Long: `todoctl talks to a todo GraphQL server.

Use the subcommands to list, create, edit, complete and delete tasks,
or run "todoctl ui" for the interactive view.

The endpoint and timeout come from flags, the TODO_ENDPOINT and
TODO_TIMEOUT environment variables, or ~/.todoctl.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&o.configFile, "config", "", "config file (default ~/.todoctl.yaml)")
	flags.String("endpoint", "", "GraphQL endpoint (default "+config.DefaultEndpoint+")")
	flags.Duration("timeout", 0, "request timeout (default "+config.DefaultClientTimeout.String()+")")
	_ = o.v.BindPFlag("endpoint", flags.Lookup("endpoint"))
	_ = o.v.BindPFlag("timeout", flags.Lookup("timeout"))

	root.AddCommand(
		newListCommand(o),
		newGetCommand(o),
		newAddCommand(o),
		newEditCommand(o),
		newStatusCommand(o, "done", "Mark a task as completed", client.StatusCompleted),
		newStatusCommand(o, "reopen", "Mark a task as pending", client.StatusPending),
		newRemoveCommand(o),
		newHealthCommand(o),
		newUICommand(o),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "todoctl %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
		},
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", arg)
	}
	return id, nil
}
