package config

const (
	defaultOutputDir          = "~/videos/scenecast"
	defaultStagingDir         = "~/.local/share/scenecast/staging"
	defaultLogDir             = "~/.local/share/scenecast/logs"
	defaultMaxConcurrent      = 2
	defaultStartDelaySeconds  = 0
	defaultErrorRetryInterval = 5
	defaultLLMBaseURL         = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel           = "google/gemini-3-flash-preview"
	defaultLLMTimeoutSeconds  = 120
	defaultVoiceFormat        = "mp3"
	defaultVoiceTimeout       = 300
	defaultRenderBinary       = "reelforge"
	defaultRenderTimeout      = 1800
	defaultRecordTimeout      = 15
	defaultSceneMode          = "duration"
	defaultKeywordMode        = "per_scene"
	defaultNtfyTimeout        = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:  defaultOutputDir,
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Queue: Queue{
			MaxConcurrent:      defaultMaxConcurrent,
			StartDelaySeconds:  defaultStartDelaySeconds,
			ErrorRetryInterval: defaultErrorRetryInterval,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Voice: Voice{
			Format:         defaultVoiceFormat,
			TimeoutSeconds: defaultVoiceTimeout,
		},
		Render: Render{
			Binary:         defaultRenderBinary,
			TimeoutSeconds: defaultRenderTimeout,
		},
		ProductionRecord: ProductionRecord{
			TimeoutSeconds: defaultRecordTimeout,
		},
		Export: Export{
			Script:   true,
			Audio:    true,
			Prompts:  true,
			Metadata: true,
			Video:    true,
		},
		Pipeline: Pipeline{
			SceneMode:   defaultSceneMode,
			KeywordMode: defaultKeywordMode,
			SEOEnabled:  true,
			Assembly:    true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
