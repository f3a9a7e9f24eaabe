package config

import "regexp"

var versionPattern = regexp.MustCompile(`^\d+(\.\d+){0,3}$`)
