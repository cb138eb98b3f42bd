package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/todo-graphql-demo/client"
	"github.com/example/todo-graphql-demo/tui"
)

func newListCommand(o *options) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, newest first",
		Example: `  todoctl list
  todoctl list --status pending`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.client()
			if err != nil {
				return err
			}

			var tasks []client.Task
			if status == "" {
				tasks, err = c.GetAllTasks(commandContext(cmd))
			} else {
				s, perr := parseStatus(status)
				if perr != nil {
					return perr
				}
				tasks, err = c.GetTasksByStatus(commandContext(cmd), s)
			}
			if err != nil {
				return fmt.Errorf("listing tasks: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks.")
				return nil
			}
			for _, t := range tasks {
				printTaskLine(out, t)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only show tasks with this status (pending or completed)")
	return cmd
}

func newGetCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a single task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := o.client()
			if err != nil {
				return err
			}

			t, err := c.GetTaskByID(commandContext(cmd), id)
			if err != nil {
				return fmt.Errorf("getting task %d: %w", id, err)
			}
			if t == nil {
				return fmt.Errorf("task %d not found", id)
			}
			printTaskDetail(cmd.OutOrStdout(), *t)
			return nil
		},
	}
}

func newAddCommand(o *options) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Example: `  todoctl add "Buy milk"
  todoctl add Call the plumber --description "before friday"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.client()
			if err != nil {
				return err
			}

			t, err := client.NewSession(c).Create(commandContext(cmd), strings.Join(args, " "), description)
			if err != nil {
				return fmt.Errorf("creating task: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %d: %s\n", t.ID, t.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	return cmd
}

func newEditCommand(o *options) *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Replace the title and description of a task",
		Long: `Replace the title and description of a task.

The description is replaced as well: omitting --description clears it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := o.client()
			if err != nil {
				return err
			}

			t, err := client.NewSession(c).Edit(commandContext(cmd), id, title, description)
			if err != nil {
				return fmt.Errorf("editing task %d: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task %d: %s\n", t.ID, t.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newStatusCommand(o *options, use, short string, status client.Status) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := o.client()
			if err != nil {
				return err
			}

			t, err := c.UpdateTaskStatus(commandContext(cmd), id, status)
			if err != nil {
				return fmt.Errorf("updating task %d: %w", id, err)
			}
			printTaskLine(cmd.OutOrStdout(), *t)
			return nil
		},
	}
}

func newRemoveCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := o.client()
			if err != nil {
				return err
			}

			deleted, err := c.DeleteTask(commandContext(cmd), id)
			if err != nil {
				return fmt.Errorf("deleting task %d: %w", id, err)
			}
			if deleted {
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %d\n", id)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Task %d did not exist\n", id)
			}
			return nil
		},
	}
}

func newHealthCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the server and its task store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.client()
			if err != nil {
				return err
			}

			h, err := c.Health(commandContext(cmd))
			if err != nil {
				return fmt.Errorf("checking health: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", h.Status, h.Timestamp.Format(time.RFC3339))
			if h.Status != "Healthy" {
				return fmt.Errorf("server reported %s", h.Status)
			}
			return nil
		},
	}
}

func newUICommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive task view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.settings()
			if err != nil {
				return err
			}
			session := client.NewSession(client.New(cfg.Endpoint, cfg.Timeout))
			return tui.Run(session, cfg.Timeout)
		},
	}
}

func parseStatus(s string) (client.Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return client.StatusPending, nil
	case "completed", "done":
		return client.StatusCompleted, nil
	}
	return "", fmt.Errorf("unknown status %q (want pending or completed)", s)
}

func printTaskLine(w io.Writer, t client.Task) {
	box := "[ ]"
	if t.Status == client.StatusCompleted {
		box = "[x]"
	}
	line := fmt.Sprintf("%4d %s %s", t.ID, box, t.Title)
	if t.Description != nil && *t.Description != "" {
		line += "  (" + *t.Description + ")"
	}
	fmt.Fprintln(w, line)
}

func printTaskDetail(w io.Writer, t client.Task) {
	fmt.Fprintf(w, "ID:          %d\n", t.ID)
	fmt.Fprintf(w, "Title:       %s\n", t.Title)
	if t.Description != nil {
		fmt.Fprintf(w, "Description: %s\n", *t.Description)
	}
	fmt.Fprintf(w, "Status:      %s\n", t.Status)
	fmt.Fprintf(w, "Created:     %s\n", t.CreatedAt.Format(time.RFC3339))
	if t.UpdatedAt != nil {
		fmt.Fprintf(w, "Updated:     %s\n", t.UpdatedAt.Format(time.RFC3339))
	}
}
