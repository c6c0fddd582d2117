package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"scenecast/internal/ipc"
)

func newRunConfigCommand(ctx *commandContext) *cobra.Command {
	runConfigCmd := &cobra.Command{
		Use:   "run-config",
		Short: "Inspect and adjust the dispatch configuration",
	}

	var showJSON bool
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective dispatch configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.RunConfigGet()
				if err != nil {
					return err
				}
				if showJSON {
					return writeJSON(cmd, resp.Config)
				}
				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Max concurrent jobs: %d\n", resp.Config.MaxConcurrent)
				fmt.Fprintf(stdout, "Start delay:         %ds\n", resp.Config.StartDelaySeconds)
				if resp.Config.OutputDir != "" {
					fmt.Fprintf(stdout, "Output directory:    %s\n", resp.Config.OutputDir)
				}
				if len(resp.Config.ExportToggles) > 0 {
					keys := make([]string, 0, len(resp.Config.ExportToggles))
					for key := range resp.Config.ExportToggles {
						keys = append(keys, key)
					}
					sort.Strings(keys)
					parts := make([]string, 0, len(keys))
					for _, key := range keys {
						parts = append(parts, fmt.Sprintf("%s=%t", key, resp.Config.ExportToggles[key]))
					}
					fmt.Fprintf(stdout, "Export toggles:      %s\n", strings.Join(parts, " "))
				}
				return nil
			})
		},
	}
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Emit configuration as JSON")

	var (
		maxConcurrent int
		startDelay    int
		outputDir     string
		exportOn      []string
		exportOff     []string
	)
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Update the dispatch configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.RunConfigGet()
				if err != nil {
					return err
				}
				cfg := resp.Config
				if cmd.Flags().Changed("max-concurrent") {
					if maxConcurrent < 1 {
						return fmt.Errorf("max-concurrent must be at least 1")
					}
					cfg.MaxConcurrent = maxConcurrent
				}
				if cmd.Flags().Changed("start-delay") {
					if startDelay < 0 {
						return fmt.Errorf("start-delay must not be negative")
					}
					cfg.StartDelaySeconds = startDelay
				}
				if cmd.Flags().Changed("output-dir") {
					cfg.OutputDir = strings.TrimSpace(outputDir)
				}
				if len(exportOn) > 0 || len(exportOff) > 0 {
					if cfg.ExportToggles == nil {
						cfg.ExportToggles = make(map[string]bool)
					}
					for _, key := range exportOn {
						cfg.ExportToggles[normalizeExportKey(key)] = true
					}
					for _, key := range exportOff {
						cfg.ExportToggles[normalizeExportKey(key)] = false
					}
				}
				if _, err := client.RunConfigSet(ipc.RunConfigSetRequest{Config: cfg}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Dispatch configuration updated (max concurrent %d, start delay %ds)\n",
					cfg.MaxConcurrent, cfg.StartDelaySeconds)
				return nil
			})
		},
	}
	setCmd.Flags().IntVar(&maxConcurrent, "max-concurrent", 0, "Maximum number of jobs run at once")
	setCmd.Flags().IntVar(&startDelay, "start-delay", 0, "Seconds to wait between job starts")
	setCmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for finished videos and exports")
	setCmd.Flags().StringSliceVar(&exportOn, "enable-export", nil, "Export artifact to enable (script, audio, prompts, metadata, video)")
	setCmd.Flags().StringSliceVar(&exportOff, "disable-export", nil, "Export artifact to disable (script, audio, prompts, metadata, video)")

	runConfigCmd.AddCommand(showCmd)
	runConfigCmd.AddCommand(setCmd)
	return runConfigCmd
}

func normalizeExportKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
