// SPDX-License-Identifier: Apache-2.0

package sanity

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joomcode/errorx"
)

// MaxModuleNameLen mirrors the kernel's MODULE_NAME_LEN (64) minus the trailing NUL.
const MaxModuleNameLen = 63

// Security validation patterns
var (
	// shellMetachars contains dangerous shell metacharacters that should be rejected
	shellMetachars = regexp.MustCompile(`[;&|$\x60<>(){}[\]*?~]`)

	// validPathChars ensures paths only contain safe characters
	// Allows: alphanumeric, forward slash, dash, underscore, dot
	validPathChars = regexp.MustCompile(`^[a-zA-Z0-9/_.\-]+$`)
)

// ModuleName validates the input string as a kernel module identifier.
// It only allows ascii alphanumeric characters, underscore and hyphen, so the value is always
// safe to pass as a single argv element to modprobe or the module syscalls.
// Nothing is stripped: an input with any other character is rejected.
func ModuleName(s string) (string, error) {
	if s == "" {
		return "", errorx.IllegalArgument.New("kernel module name cannot be empty")
	}

	if len(s) > MaxModuleNameLen {
		return "", errorx.IllegalArgument.New("kernel module name is longer than %d characters: %q", MaxModuleNameLen, s)
	}

	for i := 0; i < len(s); i++ {
		b := s[i]
		if ('a' <= b && b <= 'z') ||
			('A' <= b && b <= 'Z') ||
			('0' <= b && b <= '9') ||
			b == '_' ||
			b == '-' {
			continue
		}

		return "", errorx.IllegalArgument.New("kernel module name contains invalid character %q: %q", b, s)
	}

	// a leading '-' would be parsed as an option by modprobe
	if s[0] == '-' {
		return "", errorx.IllegalArgument.New("kernel module name cannot start with '-': %q", s)
	}

	return s, nil
}

// NormalizeModuleName returns the name the kernel uses for a module.
// The kernel treats '-' and '_' as equivalent and reports names with underscores in /proc/modules.
func NormalizeModuleName(s string) string {
	return strings.ReplaceAll(s, "-", "_")
}

// SanitizePath validates and sanitizes the given path according to strict security rules.
//
// Specifically, it:
//  1. Rejects paths containing shell metacharacters (e.g., ; & | $ ` < > ( ) { } [ ] * ? ~).
//  2. Rejects path traversal attempts (e.g., segments like "../", "/..", or paths ending with "..").
//  3. Requires the input path to be absolute.
//  4. Normalizes the path by removing redundant slashes and dot directories (using filepath.Clean).
//
// Returns the sanitized (cleaned) path, or an error if the input is invalid or unsafe.
func SanitizePath(path string) (string, error) {
	if path == "" {
		return "", errorx.IllegalArgument.New("path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		return "", errorx.IllegalArgument.New("path must be absolute: %s", path)
	}

	// Check for ".." as a path segment before cleaning
	for _, segment := range strings.Split(path, "/") {
		if segment == ".." {
			return "", errorx.IllegalArgument.New("path cannot contain '..' segments: %s", path)
		}
	}

	if shellMetachars.MatchString(path) {
		return "", errorx.IllegalArgument.New("path contains shell metacharacters: %s", path)
	}

	if !validPathChars.MatchString(path) {
		return "", errorx.IllegalArgument.New("path contains invalid characters: %s", path)
	}

	return filepath.Clean(path), nil
}
