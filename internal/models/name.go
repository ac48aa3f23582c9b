package models

import (
	"path"
	"regexp"
	"strings"
)

const fallbackObjectName = "object"

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// SanitizeName reduces a caller-supplied filename to a safe display name:
// path components are stripped, unsafe characters collapse to underscores,
// and leading dots are removed so stored names cannot masquerade as hidden
// or traversal entries.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	name = path.Base(name)
	name = unsafeNameChars.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, ".")
	if name == "" || name == "_" {
		return fallbackObjectName
	}
	return name
}
