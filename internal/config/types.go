package config

type Config struct {
	Version  int      `yaml:"version"`
	Analysis Analysis `yaml:"analysis"`
	Profile  Profile  `yaml:"profile"`
	Log      Log      `yaml:"log"`
}

type Analysis struct {
	DownloadBucketSize     int  `yaml:"download_bucket_size"`
	ImportBucketSize       int  `yaml:"import_bucket_size"`
	DedupeRepeatedProgress bool `yaml:"dedupe_repeated_progress"`
}

type Profile struct {
	Binary                string `yaml:"binary"`
	MinVersion            string `yaml:"min_version,omitempty"`
	LogFile               string `yaml:"log_file"`
	CommandTimeoutSeconds int    `yaml:"command_timeout_seconds"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func DefaultConfig() Config {
	return Config{
		Version: 1,
		Analysis: Analysis{
			DownloadBucketSize:     100000,
			ImportBucketSize:       1000,
			DedupeRepeatedProgress: false,
		},
		Profile: Profile{
			Binary:                "cm",
			LogFile:               "clone_and_profile.log",
			CommandTimeoutSeconds: 86400,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}
