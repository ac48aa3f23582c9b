package storage

import "strings"

const s3Scheme = "s3://"

// S3Location builds the canonical location pointer for an object-store key.
func S3Location(bucket, key string) string {
	return s3Scheme + bucket + "/" + key
}

// IsS3Location reports whether a stored location points at an object store.
func IsS3Location(location string) bool {
	return strings.HasPrefix(location, s3Scheme)
}

// ObjectKey derives the object-store key from a stored location. Two legacy
// shapes are accepted: the canonical s3://bucket/key form, and a bare
// absolute path left over from pre-migration local storage, whose leading
// slash is stripped to form the key. Anything else is invalid.
func ObjectKey(location string) (string, error) {
	switch {
	case strings.HasPrefix(location, s3Scheme):
		rest := strings.TrimPrefix(location, s3Scheme)
		bucket, key, ok := strings.Cut(rest, "/")
		if !ok || bucket == "" || key == "" {
			return "", &InvalidLocationError{Location: location, Reason: "missing bucket or key"}
		}
		return key, nil
	case strings.HasPrefix(location, "/") && len(location) > 1:
		return strings.TrimPrefix(location, "/"), nil
	default:
		return "", &InvalidLocationError{Location: location, Reason: "unrecognized location shape"}
	}
}
