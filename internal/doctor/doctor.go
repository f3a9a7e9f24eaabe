package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/jaa/sync-profiler/internal/config"
)

type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

type Check struct {
	Severity Severity `json:"severity"`
	Name     string   `json:"name"`
	Message  string   `json:"message"`
}

type Report struct {
	Checks []Check `json:"checks"`
}

func (r Report) HasErrors() bool {
	for _, check := range r.Checks {
		if check.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (r Report) ErrorCount() int {
	count := 0
	for _, check := range r.Checks {
		if check.Severity == SeverityError {
			count++
		}
	}
	return count
}

type Checker struct {
	LookPath      func(string) (string, error)
	ReadVersion   func(context.Context, string) (string, error)
	CheckWritable func(string) error
	Getwd         func() (string, error)
}

func NewChecker() *Checker {
	return &Checker{
		LookPath:    exec.LookPath,
		ReadVersion: defaultReadVersion,
		CheckWritable: func(path string) error {
			return checkDirWritable(path)
		},
		Getwd: os.Getwd,
	}
}

// Check inspects the environment a profiling run depends on. Analysis of an
// existing log needs none of it, so problems here only block the profile
// command.
func (c *Checker) Check(ctx context.Context, cfg config.Config) Report {
	report := Report{Checks: []Check{}}

	report.Checks = append(report.Checks, c.binaryChecks(ctx, cfg.Profile)...)
	report.Checks = append(report.Checks, c.logFileCheck(cfg.Profile.LogFile))

	report.Checks = append(report.Checks, Check{
		Severity: SeverityInfo,
		Name:     "analysis",
		Message: fmt.Sprintf(
			"bucket sizes: download=%d import=%d",
			cfg.Analysis.DownloadBucketSize,
			cfg.Analysis.ImportBucketSize,
		),
	})
	if cfg.Analysis.DedupeRepeatedProgress {
		report.Checks = append(report.Checks, Check{
			Severity: SeverityInfo,
			Name:     "analysis",
			Message:  "repeated progress values are collapsed before resampling",
		})
	}

	return report
}

func (c *Checker) binaryChecks(ctx context.Context, profile config.Profile) []Check {
	binary := strings.TrimSpace(profile.Binary)
	if binary == "" {
		binary = "cm"
	}

	location, err := c.LookPath(binary)
	if err != nil {
		return []Check{{
			Severity: SeverityError,
			Name:     "dependency",
			Message:  fmt.Sprintf("%s not found in PATH", binary),
		}}
	}

	checks := []Check{{
		Severity: SeverityInfo,
		Name:     "dependency",
		Message:  fmt.Sprintf("%s found at %s", binary, location),
	}}

	output, versionErr := c.ReadVersion(ctx, binary)
	if versionErr != nil {
		return append(checks, Check{
			Severity: SeverityWarn,
			Name:     "dependency",
			Message:  fmt.Sprintf("%s version could not be read: %v", binary, versionErr),
		})
	}

	version, parseErr := extractVersion(output)
	if parseErr != nil {
		return append(checks, Check{
			Severity: SeverityWarn,
			Name:     "dependency",
			Message:  fmt.Sprintf("%s version output is unrecognized: %q", binary, strings.TrimSpace(output)),
		})
	}

	minVersion := strings.TrimSpace(profile.MinVersion)
	if minVersion != "" && compareVersions(version, minVersion) < 0 {
		return append(checks, Check{
			Severity: SeverityError,
			Name:     "dependency",
			Message:  fmt.Sprintf("%s version %s is below minimum %s", binary, version, minVersion),
		})
	}

	return append(checks, Check{
		Severity: SeverityInfo,
		Name:     "dependency",
		Message:  fmt.Sprintf("%s version %s is compatible", binary, version),
	})
}

func (c *Checker) logFileCheck(raw string) Check {
	logFile, err := config.ExpandPath(raw)
	if err != nil {
		return Check{Severity: SeverityError, Name: "filesystem", Message: fmt.Sprintf("profile log_file is invalid: %v", err)}
	}
	dir := filepath.Dir(logFile)
	if !filepath.IsAbs(dir) && c.Getwd != nil {
		if cwd, wdErr := c.Getwd(); wdErr == nil {
			dir = filepath.Join(cwd, dir)
		}
	}
	if err := c.CheckWritable(dir); err != nil {
		return Check{Severity: SeverityError, Name: "filesystem", Message: fmt.Sprintf("log directory %s is not writable: %v", dir, err)}
	}
	return Check{Severity: SeverityInfo, Name: "filesystem", Message: fmt.Sprintf("log directory %s is writable", dir)}
}

func defaultReadVersion(ctx context.Context, binary string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, "version")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", err
	}
	return string(output), nil
}

func checkDirWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}

	file, err := os.CreateTemp(path, ".syncprof-write-check-*")
	if err != nil {
		return err
	}
	name := file.Name()
	_ = file.Close()
	_ = os.Remove(name)
	return nil
}

// cm reports four-part versions (11.0.16.8101); the fourth part is compared
// when both sides carry it.
var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)(?:\.(\d+))?`)

func extractVersion(raw string) (string, error) {
	matches := versionPattern.FindStringSubmatch(raw)
	if len(matches) != 5 {
		return "", fmt.Errorf("no dotted version found")
	}
	version := fmt.Sprintf("%s.%s.%s", matches[1], matches[2], matches[3])
	if matches[4] != "" {
		version += "." + matches[4]
	}
	return version, nil
}

func compareVersions(lhs string, rhs string) int {
	leftParts := strings.Split(lhs, ".")
	rightParts := strings.Split(rhs, ".")
	for i := 0; i < 4; i++ {
		leftValue := 0
		rightValue := 0
		if i < len(leftParts) {
			leftValue, _ = strconv.Atoi(leftParts[i])
		}
		if i < len(rightParts) {
			rightValue, _ = strconv.Atoi(rightParts[i])
		}
		if leftValue > rightValue {
			return 1
		}
		if leftValue < rightValue {
			return -1
		}
	}
	return 0
}
