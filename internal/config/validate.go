package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return "invalid config"
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(e.Problems, "; "))
}

func Validate(cfg Config) error {
	problems := []string{}

	if cfg.Version != 1 {
		problems = append(problems, "version must be 1")
	}

	if cfg.Analysis.DownloadBucketSize <= 0 {
		problems = append(problems, "analysis.download_bucket_size must be > 0")
	}
	if cfg.Analysis.ImportBucketSize <= 0 {
		problems = append(problems, "analysis.import_bucket_size must be > 0")
	}

	if strings.TrimSpace(cfg.Profile.Binary) == "" {
		problems = append(problems, "profile.binary must be set")
	}
	if strings.TrimSpace(cfg.Profile.LogFile) == "" {
		problems = append(problems, "profile.log_file must be set")
	} else if _, err := ExpandPath(cfg.Profile.LogFile); err != nil {
		problems = append(problems, fmt.Sprintf("profile.log_file is invalid: %v", err))
	}
	if cfg.Profile.CommandTimeoutSeconds <= 0 {
		problems = append(problems, "profile.command_timeout_seconds must be > 0")
	}
	if minVersion := strings.TrimSpace(cfg.Profile.MinVersion); minVersion != "" && !versionPattern.MatchString(minVersion) {
		problems = append(problems, fmt.Sprintf("profile.min_version %q is not a dotted version", minVersion))
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		problems = append(problems, fmt.Sprintf("log.level %q is not one of debug, info, warn, error", cfg.Log.Level))
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q is not one of text, json", cfg.Log.Format))
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
