package models

import (
	"fmt"
	"regexp"
	"strings"
)

// ingestableMimeType matches the media types this service accepts for stored
// objects: a discrete top-level type with a concrete subtype, optionally
// followed by parameters. Multipart and wildcard types are rejected.
var ingestableMimeType = regexp.MustCompile(
	`^(application|audio|font|image|model|text|video)/[A-Za-z0-9][A-Za-z0-9!#$&^_.+-]*` +
		`(\s*;\s*[A-Za-z0-9_.-]+=([A-Za-z0-9_.+-]+|"[^"]*"))*$`)

// ParseMimeType validates a declared media type against the ingestable
// pattern and returns it trimmed.
func ParseMimeType(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", fmt.Errorf("mime_type is required")
	}
	if !ingestableMimeType.MatchString(value) {
		return "", fmt.Errorf("invalid mime_type: %s", value)
	}
	return value, nil
}
