// Package storagekeys derives deterministic blob-store paths and
// human-readable system filenames for uploaded evidence. All functions are
// pure; nothing here touches storage.
package storagekeys

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// versionWidth zero-pads versions in filenames so directory listings sort
// lexicographically by version.
const versionWidth = 3

const shortLabelLen = 8

// Label is a display-only short identifier derived from a full uuid. Labels
// are not unique and must never be used as a lookup key.
type Label string

// ShortLabel derives the readable label for an identifier: the first eight
// hex characters, uppercased.
func ShortLabel(id string) Label {
	s := strings.ReplaceAll(id, "-", "")
	if len(s) > shortLabelLen {
		s = s[:shortLabelLen]
	}
	return Label(strings.ToUpper(s))
}

// StoragePath builds the object key for one upload attempt. The token keeps
// racing attempts at the same version number from colliding physically;
// orphaned keys from abandoned attempts are harmless and never reused.
func StoragePath(userID, applicationID, incidentID, slotCode string, version uint, ext, token string) string {
	return fmt.Sprintf("user/%s/app/%s/incident/%s/%s/v%0*d-%s%s",
		userID, applicationID, incidentID, strings.ToLower(slotCode), versionWidth, version, token, ext)
}

// SystemFilename builds the human-readable name shown in the admin review UI.
func SystemFilename(appLabel, incidentLabel Label, slotCode string, version uint, ext string) string {
	return fmt.Sprintf("%s_%s_%s_v%0*d%s", appLabel, incidentLabel, slotCode, versionWidth, version, ext)
}

// NormalizeExt extracts a lowercased extension (with dot) from the original
// filename, defaulting to ".bin" when there is none.
func NormalizeExt(originalFilename string) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	if ext == "" || ext == "." {
		return ".bin"
	}
	return ext
}

// NewCollisionToken returns a short random hex token for StoragePath.
func NewCollisionToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
