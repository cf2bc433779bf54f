// Package secrets resolves credential settings from ${VAR} references or
// mounted secret files (Docker and Kubernetes secrets). Secret values are
// never logged or included in errors.
package secrets

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/zoneheat/zoneheat/internal/errors"
	"github.com/zoneheat/zoneheat/internal/logger"
)

const (
	// maxSecretFileSize limits secret file reads; secrets are tokens and DSNs, not documents.
	maxSecretFileSize = 64 * 1024

	componentSecrets = "secrets"
)

// varRef matches ${VAR} and ${VAR:-fallback}. A bare $ is left alone so
// bcrypt hashes such as "$2a$12$..." pass through unchanged.
var varRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// Expand replaces ${VAR} and ${VAR:-fallback} references with environment
// values. A reference without fallback to an unset or empty variable is an
// error naming the variable.
func Expand(s string) (string, error) {
	if !strings.Contains(s, "${") {
		return s, nil
	}

	var missing []string
	out := varRef.ReplaceAllStringFunc(s, func(ref string) string {
		m := varRef.FindStringSubmatch(ref)
		if v := os.Getenv(m[1]); v != "" {
			return v
		}
		if m[2] != "" {
			return m[3]
		}
		missing = append(missing, m[1])
		return ""
	})

	if len(missing) > 0 {
		return "", errors.Newf("missing required environment variable(s): %s", strings.Join(missing, ", ")).
			Component(componentSecrets).
			Category(errors.CategoryConfiguration).
			Build()
	}
	return out, nil
}

// ReadFile reads a secret file and trims trailing newlines. Files readable by
// group or others are accepted with a warning.
func ReadFile(path string) (string, error) {
	if path == "" {
		return "", fileError(errors.NewStd("secret file path is empty"), path)
	}
	clean := filepath.Clean(path)

	info, err := os.Stat(clean)
	if err != nil {
		return "", fileError(err, clean)
	}
	if !info.Mode().IsRegular() {
		return "", fileError(errors.NewStd("secret path is not a regular file"), clean)
	}
	if info.Size() > maxSecretFileSize {
		return "", fileError(errors.Newf("secret file larger than %d bytes", maxSecretFileSize).Build(), clean)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		logger.Global().Module(componentSecrets).Warn("secret file is readable by group or others",
			logger.String("path", clean),
			logger.String("mode", perm.String()))
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return "", fileError(err, clean)
	}
	secret := strings.TrimRight(string(data), "\r\n")
	if secret == "" {
		return "", fileError(errors.NewStd("secret file is empty"), clean)
	}
	return secret, nil
}

// Resolve returns the secret for a setting. A non-empty filePath wins over
// value; value is expanded with Expand otherwise.
func Resolve(filePath, value string) (string, error) {
	if filePath != "" {
		return ReadFile(filePath)
	}
	return Expand(value)
}

func fileError(err error, path string) error {
	return errors.New(err).
		Component(componentSecrets).
		Category(errors.CategoryConfiguration).
		Context("path", path).
		Build()
}
