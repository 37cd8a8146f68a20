package covers

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NormalizeUUID strips a numeric cache-busting suffix from a cover image
// identifier, recovering the canonical book UUID.
//
// Identifiers handed out by BuildImageID have the form "<uuid>-<epoch>".
// Anything that is not a UUID with an all-digit suffix is returned unchanged,
// so opaque identifiers pass through untouched.
func NormalizeUUID(imageID string) string {
	if imageID == "" {
		return imageID
	}

	// Already canonical.
	if _, err := uuid.Parse(imageID); err == nil {
		return imageID
	}

	// Split on the rightmost hyphen only: UUIDs contain hyphens themselves.
	idx := strings.LastIndex(imageID, "-")
	if idx <= 0 || idx == len(imageID)-1 {
		return imageID
	}

	base, suffix := imageID[:idx], imageID[idx+1:]
	if !isDigits(suffix) {
		return imageID
	}

	if _, err := uuid.Parse(base); err != nil {
		return imageID
	}

	return base
}

// BuildImageID derives a cache-busting cover identifier from a base
// identifier and freshness metadata.
//
// In remote storage mode the provider-supplied lastModified timestamp is
// appended as unix seconds; a zero timestamp means "unknown" and the base
// identifier is returned as-is. In local mode the modification time of the
// file at coverPath is used instead. A missing file is not an error, but a
// failing stat (permissions, I/O) is returned alongside the un-suffixed
// identifier so the caller can log it and degrade.
func BuildImageID(baseID string, useRemoteStorage bool, lastModified time.Time, coverPath string) (string, error) {
	if useRemoteStorage {
		if lastModified.IsZero() {
			return baseID, nil
		}
		return fmt.Sprintf("%s-%d", baseID, lastModified.Unix()), nil
	}

	if coverPath == "" {
		return baseID, nil
	}

	info, err := os.Stat(coverPath)
	if err != nil {
		if os.IsNotExist(err) {
			return baseID, nil
		}
		return baseID, err
	}
	if info.IsDir() {
		return baseID, nil
	}

	return fmt.Sprintf("%s-%d", baseID, info.ModTime().Unix()), nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
