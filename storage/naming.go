package storage

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"
)

// UniqueName builds the stored name for an upload:
//
//	<base>-<unix millis>-<random 0..1e9>_<user><ext>
//
// user defaults to "unknown". Separators and dot segments in the original
// name are dropped so the result always passes ValidateName.
func UniqueName(original, user string) string {
	return uniqueName(original, user, time.Now(), rand.IntN(1e9))
}

func uniqueName(original, user string, now time.Time, suffix int) string {
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	ext := filepath.Ext(base)
	stem := sanitize(strings.TrimSuffix(base, ext))
	if stem == "" {
		stem = "audio"
	}
	user = sanitize(user)
	if user == "" {
		user = "unknown"
	}
	return fmt.Sprintf("%s-%d-%d_%s%s", stem, now.UnixMilli(), suffix, user, sanitize(ext))
}

func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return -1
		}
		return r
	}, s)
	for strings.Contains(s, "..") {
		s = strings.ReplaceAll(s, "..", ".")
	}
	return s
}
