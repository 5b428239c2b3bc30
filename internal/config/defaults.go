package config

const (
	defaultDataDir              = "~/.local/share/sflabel"
	defaultDatasetPath          = "~/.local/share/sflabel/dataset.jsonl"
	defaultLogDir               = "~/.local/share/sflabel/logs"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultMaxAnnotatorsPerItem = 3
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:     defaultDataDir,
			DatasetPath: defaultDatasetPath,
			LogDir:      defaultLogDir,
		},
		Annotation: Annotation{
			MaxAnnotatorsPerItem: defaultMaxAnnotatorsPerItem,
			EnableFileBackup:     true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
