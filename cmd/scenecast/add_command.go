package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"scenecast/internal/ipc"
	"scenecast/internal/queue"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var (
		title       string
		preset      string
		sceneMode   string
		keywordMode string
		voiceID     string
		voiceSpeed  float64
		noAssembly  bool
		noSEO       bool
		noMetadata  bool
		noExport    bool
		addJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "add <script-file>",
		Short: "Queue a script for production",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scriptPath := strings.TrimSpace(args[0])
			data, err := os.ReadFile(scriptPath)
			if err != nil {
				return fmt.Errorf("read script %q: %w", scriptPath, err)
			}
			script := strings.TrimSpace(string(data))
			if script == "" {
				return fmt.Errorf("script %q is empty", scriptPath)
			}

			if strings.TrimSpace(title) == "" {
				base := filepath.Base(scriptPath)
				title = strings.TrimSuffix(base, filepath.Ext(base))
			}

			cfg := ctx.configValue()
			settings := queue.JobSettings{
				SceneMode:   sceneMode,
				KeywordMode: keywordMode,
				Voice: queue.VoiceSettings{
					VoiceID: voiceID,
					Speed:   voiceSpeed,
				},
				Assembly: queue.AssemblyToggle{Enabled: !noAssembly},
				SEO:      queue.SEOToggle{Enabled: !noSEO},
				Metadata: queue.MetadataToggle{Enabled: !noMetadata},
				Export: queue.ExportSettings{
					Enabled:  !noExport,
					Script:   true,
					Audio:    true,
					Prompts:  true,
					Metadata: true,
					Video:    true,
				},
			}
			if cfg != nil {
				if settings.SceneMode == "" {
					settings.SceneMode = cfg.Pipeline.SceneMode
				}
				if settings.KeywordMode == "" {
					settings.KeywordMode = cfg.Pipeline.KeywordMode
				}
				if settings.Voice.VoiceID == "" {
					settings.Voice.VoiceID = cfg.Voice.VoiceID
				}
				if settings.Voice.Format == "" {
					settings.Voice.Format = cfg.Voice.Format
				}
				if !noExport {
					settings.Export.Script = cfg.Export.Script
					settings.Export.Audio = cfg.Export.Audio
					settings.Export.Prompts = cfg.Export.Prompts
					settings.Export.Metadata = cfg.Export.Metadata
					settings.Export.Video = cfg.Export.Video
				}
			}

			encoded, err := queue.EncodeSettings(settings)
			if err != nil {
				return err
			}

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.QueueAdd(ipc.QueueAddRequest{
					Title:        title,
					SourceScript: script,
					Preset:       preset,
					SettingsJSON: encoded,
				})
				if err != nil {
					return err
				}
				if addJSON {
					return writeJSON(cmd, resp.Item)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued job %d: %s\n", resp.Item.ID, resp.Item.Title)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Working title (defaults to the script file name)")
	cmd.Flags().StringVar(&preset, "preset", "", "Named preset recorded with the job")
	cmd.Flags().StringVar(&sceneMode, "scene-mode", "", "Scene split mode (duration or beat)")
	cmd.Flags().StringVar(&keywordMode, "keyword-mode", "", "Keyword generation mode (per_scene or global)")
	cmd.Flags().StringVar(&voiceID, "voice", "", "Narration voice identifier")
	cmd.Flags().Float64Var(&voiceSpeed, "speed", 0, "Narration speed multiplier")
	cmd.Flags().BoolVar(&noAssembly, "no-assembly", false, "Skip footage assembly (job finishes with a warning)")
	cmd.Flags().BoolVar(&noSEO, "no-seo", false, "Skip SEO metadata generation")
	cmd.Flags().BoolVar(&noMetadata, "no-metadata", false, "Skip title/description generation")
	cmd.Flags().BoolVar(&noExport, "no-export", false, "Skip artifact export")
	cmd.Flags().BoolVar(&addJSON, "json", false, "Emit the created job as JSON")

	return cmd
}
