// Package plastic builds the cm invocations that clone a Git repository into
// a new Plastic SCM repository.
package plastic

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jaa/sync-profiler/internal/config"
	"github.com/jaa/sync-profiler/internal/engine"
)

type Adapter struct {
	bin string
}

type SyncRequest struct {
	GitURL     string
	Repository string
	Username   string
	Password   string
}

func New(profile config.Profile) *Adapter {
	bin := strings.TrimSpace(profile.Binary)
	if bin == "" {
		bin = "cm"
	}
	return &Adapter{bin: bin}
}

func (a *Adapter) Kind() string {
	return "plastic"
}

func (a *Adapter) Binary() string {
	return a.bin
}

func (a *Adapter) Validate(req SyncRequest) error {
	problems := []string{}
	if strings.TrimSpace(req.Repository) == "" {
		problems = append(problems, "plastic repository name must be set")
	} else if strings.ContainsAny(req.Repository, " \t\r\n") {
		problems = append(problems, fmt.Sprintf("plastic repository name %q must not contain whitespace", req.Repository))
	}
	if strings.TrimSpace(req.GitURL) == "" {
		problems = append(problems, "git repository url must be set")
	} else if err := validateURL(req.GitURL); err != nil {
		problems = append(problems, fmt.Sprintf("git repository url is invalid: %v", err))
	}
	if strings.TrimSpace(req.Username) == "" {
		problems = append(problems, "git username must be set")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}

// Plan returns the commands of one profiling run: create the repository, then
// sync the Git history into it.
func (a *Adapter) Plan(req SyncRequest, timeout time.Duration) ([]engine.ExecSpec, error) {
	if err := a.Validate(req); err != nil {
		return nil, err
	}
	return []engine.ExecSpec{
		a.MakeRepository(req.Repository, timeout),
		a.SyncFromGit(req, timeout),
	}, nil
}

func (a *Adapter) MakeRepository(repository string, timeout time.Duration) engine.ExecSpec {
	args := []string{"mkrep", repository}
	return engine.ExecSpec{
		Bin:            a.bin,
		Args:           args,
		Timeout:        timeout,
		DisplayCommand: formatCommand(a.bin, args),
	}
}

func (a *Adapter) SyncFromGit(req SyncRequest, timeout time.Duration) engine.ExecSpec {
	args := []string{"sync", req.Repository, "git", req.GitURL, "--user=" + req.Username, "--pwd=" + req.Password}
	displayArgs := []string{"sync", req.Repository, "git", sanitizeURL(req.GitURL), "--user=" + req.Username, "--pwd=***"}
	return engine.ExecSpec{
		Bin:            a.bin,
		Args:           args,
		Timeout:        timeout,
		DisplayCommand: formatCommand(a.bin, displayArgs),
	}
}

func formatCommand(bin string, args []string) string {
	parts := []string{bin}
	parts = append(parts, args...)
	return strings.Join(parts, " ")
}

// sanitizeURL drops credentials, query and fragment so the URL is safe to log.
func sanitizeURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	parsed.User = nil
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed.String()
}

func validateURL(raw string) error {
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return err
	}
	switch parsed.Scheme {
	case "http", "https", "ssh", "git":
	default:
		return fmt.Errorf("scheme must be http, https, ssh or git")
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}
