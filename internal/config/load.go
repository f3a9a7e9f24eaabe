package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type LoadOptions struct {
	ExplicitPath string
	WorkingDir   string
	Env          map[string]string
}

type fileConfig struct {
	Version  *int         `yaml:"version"`
	Analysis fileAnalysis `yaml:"analysis"`
	Profile  fileProfile  `yaml:"profile"`
	Log      fileLog      `yaml:"log"`
}

type fileAnalysis struct {
	DownloadBucketSize     *int  `yaml:"download_bucket_size"`
	ImportBucketSize       *int  `yaml:"import_bucket_size"`
	DedupeRepeatedProgress *bool `yaml:"dedupe_repeated_progress"`
}

type fileProfile struct {
	Binary                *string `yaml:"binary"`
	MinVersion            *string `yaml:"min_version"`
	LogFile               *string `yaml:"log_file"`
	CommandTimeoutSeconds *int    `yaml:"command_timeout_seconds"`
}

type fileLog struct {
	Level  *string `yaml:"level"`
	Format *string `yaml:"format"`
}

func Load(opts LoadOptions) (Config, error) {
	cfg := DefaultConfig()

	cwd := opts.WorkingDir
	if strings.TrimSpace(cwd) == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("resolve working directory: %w", err)
		}
		cwd = wd
	}

	env := opts.Env
	if env == nil {
		env = osEnvMap()
	}

	if explicit := strings.TrimSpace(opts.ExplicitPath); explicit != "" {
		if err := mergeFile(&cfg, explicit, true); err != nil {
			return Config{}, err
		}
	} else {
		userPath, err := UserConfigPath()
		if err != nil {
			return Config{}, err
		}
		if err := mergeFile(&cfg, userPath, false); err != nil {
			return Config{}, err
		}

		if err := mergeFile(&cfg, ProjectConfigPath(cwd), false); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnvOverrides(&cfg, env); err != nil {
		return Config{}, err
	}

	normalize(&cfg)
	return cfg, nil
}

func mergeFile(cfg *Config, path string, required bool) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file does not exist: %s", path)
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(payload, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Version != nil {
		cfg.Version = *fc.Version
	}
	if fc.Analysis.DownloadBucketSize != nil {
		cfg.Analysis.DownloadBucketSize = *fc.Analysis.DownloadBucketSize
	}
	if fc.Analysis.ImportBucketSize != nil {
		cfg.Analysis.ImportBucketSize = *fc.Analysis.ImportBucketSize
	}
	if fc.Analysis.DedupeRepeatedProgress != nil {
		cfg.Analysis.DedupeRepeatedProgress = *fc.Analysis.DedupeRepeatedProgress
	}
	if fc.Profile.Binary != nil {
		cfg.Profile.Binary = strings.TrimSpace(*fc.Profile.Binary)
	}
	if fc.Profile.MinVersion != nil {
		cfg.Profile.MinVersion = strings.TrimSpace(*fc.Profile.MinVersion)
	}
	if fc.Profile.LogFile != nil {
		cfg.Profile.LogFile = strings.TrimSpace(*fc.Profile.LogFile)
	}
	if fc.Profile.CommandTimeoutSeconds != nil {
		cfg.Profile.CommandTimeoutSeconds = *fc.Profile.CommandTimeoutSeconds
	}
	if fc.Log.Level != nil {
		cfg.Log.Level = strings.TrimSpace(*fc.Log.Level)
	}
	if fc.Log.Format != nil {
		cfg.Log.Format = strings.TrimSpace(*fc.Log.Format)
	}

	return nil
}

func applyEnvOverrides(cfg *Config, env map[string]string) error {
	ints := []struct {
		key    string
		target *int
	}{
		{key: "SYNCPROF_DOWNLOAD_BUCKET_SIZE", target: &cfg.Analysis.DownloadBucketSize},
		{key: "SYNCPROF_IMPORT_BUCKET_SIZE", target: &cfg.Analysis.ImportBucketSize},
		{key: "SYNCPROF_COMMAND_TIMEOUT_SECONDS", target: &cfg.Profile.CommandTimeoutSeconds},
	}
	for _, entry := range ints {
		value := strings.TrimSpace(env[entry.key])
		if value == "" {
			continue
		}
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", entry.key, value, err)
		}
		*entry.target = parsed
	}

	if value := strings.TrimSpace(env["SYNCPROF_DEDUPE_REPEATED_PROGRESS"]); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid SYNCPROF_DEDUPE_REPEATED_PROGRESS value %q: %w", value, err)
		}
		cfg.Analysis.DedupeRepeatedProgress = parsed
	}
	if value := strings.TrimSpace(env["SYNCPROF_CM_BIN"]); value != "" {
		cfg.Profile.Binary = value
	}
	if value := strings.TrimSpace(env["SYNCPROF_LOG_FILE"]); value != "" {
		cfg.Profile.LogFile = value
	}
	if value := strings.TrimSpace(env["SYNCPROF_LOG_LEVEL"]); value != "" {
		cfg.Log.Level = value
	}
	if value := strings.TrimSpace(env["SYNCPROF_LOG_FORMAT"]); value != "" {
		cfg.Log.Format = value
	}
	return nil
}

func normalize(cfg *Config) {
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Profile.Binary == "" {
		cfg.Profile.Binary = "cm"
	}
}

func osEnvMap() map[string]string {
	result := map[string]string{}
	for _, pair := range os.Environ() {
		pieces := strings.SplitN(pair, "=", 2)
		if len(pieces) == 2 {
			result[pieces[0]] = pieces[1]
		}
	}
	return result
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory %s: %w", dir, err)
	}
	return nil
}
