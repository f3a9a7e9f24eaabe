package config

import "fmt"

func DefaultTemplate() string {
	defaults := DefaultConfig()
	return fmt.Sprintf(`version: 1
analysis:
  # Items per bucket when resampling progress into time-per-item curves.
  download_bucket_size: %d
  import_bucket_size: %d
  # Drop repeated progress counts (spinner redraws) instead of failing the run.
  dedupe_repeated_progress: false
profile:
  binary: %q
  log_file: %q
  command_timeout_seconds: %d
log:
  level: %q
  format: %q
`, defaults.Analysis.DownloadBucketSize,
		defaults.Analysis.ImportBucketSize,
		defaults.Profile.Binary,
		defaults.Profile.LogFile,
		defaults.Profile.CommandTimeoutSeconds,
		defaults.Log.Level,
		defaults.Log.Format)
}
