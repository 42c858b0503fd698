package config

const (
	defaultLogDir    = "~/.local/share/vidsift/logs"
	defaultCacheDir  = "~/.local/share/vidsift/cache"
	defaultReportDir = "~/.local/share/vidsift/reports"
	defaultLogFormat = "console"
	defaultLogLevel  = "info"

	defaultProbeTimeout = 30

	defaultThreshold            = 0.95
	defaultDurationAbsTolerance = 2.0
	defaultDurationRelTolerance = 0.02
	defaultDurationMaxDrift     = 60.0
	defaultDurationWeight       = 0.45
	defaultTitleWeight          = 0.45
	defaultPlausibilityWeight   = 0.10
	defaultDurationFloor        = 0.5
	defaultTitleFloor           = 0.6

	defaultExecutionMode = "dry-run"
)

// defaultExtensions mirrors the recognized video container allow-list.
var defaultExtensions = []string{"mp4", "mkv", "avi", "mov", "wmv", "flv", "webm", "m4v"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:    defaultLogDir,
			CacheDir:  defaultCacheDir,
			ReportDir: defaultReportDir,
		},
		Scan: Scan{
			Extensions:   append([]string(nil), defaultExtensions...),
			ProbeTimeout: defaultProbeTimeout,
			CacheEnabled: true,
		},
		Similarity: Similarity{
			Threshold:            defaultThreshold,
			DurationAbsTolerance: defaultDurationAbsTolerance,
			DurationRelTolerance: defaultDurationRelTolerance,
			DurationMaxDrift:     defaultDurationMaxDrift,
			DurationWeight:       defaultDurationWeight,
			TitleWeight:          defaultTitleWeight,
			PlausibilityWeight:   defaultPlausibilityWeight,
			DurationFloor:        defaultDurationFloor,
			TitleFloor:           defaultTitleFloor,
		},
		Execution: Execution{
			Mode: defaultExecutionMode,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
