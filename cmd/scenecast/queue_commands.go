package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"scenecast/internal/api"
	"scenecast/internal/ipc"
	"scenecast/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the production queue",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueShowCommand(ctx))
	queueCmd.AddCommand(newQueueStopCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))
	queueCmd.AddCommand(newQueueRetryFromCommand(ctx))
	queueCmd.AddCommand(newQueueRemoveCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueResetCommand(ctx))
	queueCmd.AddCommand(newQueueHealthCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string
	var listJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queue jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, status := range listStatuses {
				if _, ok := queue.ParseStatus(status); !ok {
					return fmt.Errorf("unknown status %q", status)
				}
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.QueueList(listStatuses)
				if err != nil {
					return err
				}
				if listJSON {
					return writeJSON(cmd, resp.Items)
				}
				if len(resp.Items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Title", "Status", "Step", "Progress", "Created"},
					buildQueueListRows(resp.Items),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&listStatuses, "status", nil, "Filter by status (queued, running, done, error)")
	cmd.Flags().BoolVar(&listJSON, "json", false, "Emit jobs as JSON")
	return cmd
}

func buildQueueListRows(items []api.QueueItem) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		progress := ""
		if item.Status == string(queue.StatusRunning) || item.Progress.Percent > 0 {
			progress = fmt.Sprintf("%.0f%%", item.Progress.Percent)
		}
		rows = append(rows, []string{
			strconv.FormatInt(item.ID, 10),
			item.Title,
			item.Status,
			stepLabel(item.Progress.Stage),
			progress,
			item.CreatedAt,
		})
	}
	return rows
}

func newQueueShowCommand(ctx *commandContext) *cobra.Command {
	var showJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one queue job in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.QueueDescribe(ids[0])
				if err != nil {
					return err
				}
				if showJSON {
					return writeJSON(cmd, resp.Item)
				}
				printQueueItem(cmd, resp.Item)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&showJSON, "json", false, "Emit the job as JSON")
	return cmd
}

func printQueueItem(cmd *cobra.Command, item api.QueueItem) {
	stdout := cmd.OutOrStdout()
	fmt.Fprintf(stdout, "Job %d: %s\n", item.ID, item.Title)
	if item.OriginalTitle != "" && item.OriginalTitle != item.Title {
		fmt.Fprintf(stdout, "  Original title:  %s\n", item.OriginalTitle)
	}
	fmt.Fprintf(stdout, "  Status:          %s\n", item.Status)
	if item.Preset != "" {
		fmt.Fprintf(stdout, "  Preset:          %s\n", item.Preset)
	}
	if item.Progress.Stage != "" {
		fmt.Fprintf(stdout, "  Stage:           %s (%.0f%%)\n", stepLabel(item.Progress.Stage), item.Progress.Percent)
	}
	if item.Progress.Message != "" {
		fmt.Fprintf(stdout, "  Message:         %s\n", item.Progress.Message)
	}
	if len(item.CompletedSteps) > 0 {
		labels := make([]string, 0, len(item.CompletedSteps))
		for _, step := range item.CompletedSteps {
			labels = append(labels, stepLabel(step))
		}
		fmt.Fprintf(stdout, "  Completed steps: %s\n", strings.Join(labels, ", "))
	}
	if item.FailedStep != "" {
		fmt.Fprintf(stdout, "  Failed step:     %s\n", stepLabel(item.FailedStep))
	}
	if item.RetryFromStep != "" {
		fmt.Fprintf(stdout, "  Retry from:      %s\n", stepLabel(item.RetryFromStep))
	}
	if item.ErrorMessage != "" {
		fmt.Fprintf(stdout, "  Error:           %s\n", item.ErrorMessage)
	}
	if item.WarningMessage != "" {
		fmt.Fprintf(stdout, "  Warning:         %s\n", item.WarningMessage)
	}
	if item.FinalVideoPath != "" {
		fmt.Fprintf(stdout, "  Video:           %s\n", item.FinalVideoPath)
	}
	if item.ExportDir != "" {
		fmt.Fprintf(stdout, "  Export dir:      %s\n", item.ExportDir)
	}
	if item.ProductionRecordID != "" {
		fmt.Fprintf(stdout, "  Record:          %s\n", item.ProductionRecordID)
	}
	if item.CreatedAt != "" {
		fmt.Fprintf(stdout, "  Created:         %s\n", item.CreatedAt)
	}
	if item.UpdatedAt != "" {
		fmt.Fprintf(stdout, "  Updated:         %s\n", item.UpdatedAt)
	}
}

func newQueueStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop <id>...",
		Short: "Stop running or queued jobs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.QueueStop(ids)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stopped %d job(s)\n", resp.Updated)
				return nil
			})
		},
	}
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [id]...",
		Short: "Requeue errored jobs (all of them when no ids are given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.QueueRetry(ids)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Requeued %d job(s)\n", resp.Updated)
				return nil
			})
		},
	}
}

func newQueueRetryFromCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry-from <id> <step>",
		Short: "Requeue one job to resume at a specific step",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args[:1])
			if err != nil {
				return err
			}
			step, ok := queue.ParseStep(args[1])
			if !ok {
				return fmt.Errorf("unknown step %q (valid: %s)", args[1], strings.Join(stepNames(), ", "))
			}
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.QueueRetryFrom(ids[0], string(step)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Job %d will resume at %s\n", ids[0], stepLabel(string(step)))
				return nil
			})
		},
	}
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>...",
		Short: "Remove jobs from the queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.QueueRemove(ids)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d job(s)\n", resp.Removed)
				return nil
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var clearDone bool
	var clearErrored bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove finished, errored, or all jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearDone && clearErrored {
				return fmt.Errorf("--done and --errored are mutually exclusive")
			}
			return ctx.withClient(func(client *ipc.Client) error {
				var removed int64
				switch {
				case clearDone:
					resp, err := client.QueueClearDone()
					if err != nil {
						return err
					}
					removed = resp.Removed
				case clearErrored:
					resp, err := client.QueueClearErrored()
					if err != nil {
						return err
					}
					removed = resp.Removed
				default:
					resp, err := client.QueueClear()
					if err != nil {
						return err
					}
					removed = resp.Removed
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d job(s)\n", removed)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&clearDone, "done", false, "Remove only finished jobs")
	cmd.Flags().BoolVar(&clearErrored, "errored", false, "Remove only errored jobs")
	return cmd
}

func newQueueResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Requeue jobs stranded in the running state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.QueueReset()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reset %d job(s)\n", resp.Updated)
				return nil
			})
		},
	}
}

func newQueueHealthCommand(ctx *commandContext) *cobra.Command {
	var healthJSON bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show aggregate queue diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.QueueHealth()
				if err != nil {
					return err
				}
				if healthJSON {
					return writeJSON(cmd, resp)
				}
				rows := [][]string{
					{"total", strconv.Itoa(resp.Total)},
					{"queued", strconv.Itoa(resp.Queued)},
					{"running", strconv.Itoa(resp.Running)},
					{"done", strconv.Itoa(resp.Done)},
					{"error", strconv.Itoa(resp.Errored)},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Metric", "Count"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&healthJSON, "json", false, "Emit diagnostics as JSON")
	return cmd
}
