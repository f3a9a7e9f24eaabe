// Package auth resolves the Git password handed to cm sync when it is not
// given on the command line.
package auth

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

const (
	// PromptPlaceholder as the password argument asks for resolution.
	PromptPlaceholder = "-"

	PasswordEnv     = "SYNCPROF_GIT_PASSWORD"
	keychainService = "syncprof.git"
)

var ErrGitPasswordNotFound = errors.New("git password not found")

type commandRunner func(name string, args ...string) ([]byte, error)

// GitPasswordResolver looks in the environment first, then in the macOS
// keychain under service syncprof.git with the Git username as account.
type GitPasswordResolver struct {
	Getenv  func(string) string
	Command commandRunner
}

func NewGitPasswordResolver() GitPasswordResolver {
	return GitPasswordResolver{
		Getenv:  os.Getenv,
		Command: runCommandOutput,
	}
}

func (r GitPasswordResolver) Resolve(username string) (string, error) {
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if value := strings.TrimSpace(getenv(PasswordEnv)); value != "" {
		return value, nil
	}

	command := r.Command
	if command == nil {
		command = runCommandOutput
	}
	raw, err := command(
		"security",
		"find-generic-password",
		"-s", keychainService,
		"-a", strings.TrimSpace(username),
		"-w",
	)
	if err != nil {
		return "", fmt.Errorf("%w (set %s or add keychain item %s for %s)", ErrGitPasswordNotFound, PasswordEnv, keychainService, username)
	}
	value := strings.TrimSpace(string(raw))
	if value == "" {
		return "", ErrGitPasswordNotFound
	}
	return value, nil
}

func runCommandOutput(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}
