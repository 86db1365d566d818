package extractor

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// BuildStableUnitID creates a deterministic unit ID.
// The ID is derived from the unit's identity fields and a hash of its label and position.
func BuildStableUnitID(unit *OutlineUnit) string {
	if unit == nil {
		return ""
	}

	lang := strings.TrimSpace(unit.Language)
	if lang == "" {
		lang = "unknown"
	}

	path := strings.TrimSpace(unit.Filepath)
	if path == "" {
		path = "_"
	}

	kind := strings.TrimSpace(string(unit.Kind))
	if kind == "" {
		kind = "unit"
	}

	label := canonicalize(unit.Label)
	if label == "" {
		label = "_"
	}

	fingerprint := strings.Join([]string{
		lang,
		path,
		kind,
		label,
		canonicalize(unit.Details),
		fmt.Sprintf("%d-%d", unit.Extent.Start, unit.Extent.End),
	}, "|")

	sum := sha256.Sum256([]byte(fingerprint))
	short := hex.EncodeToString(sum[:8])
	return fmt.Sprintf("%s/%s:%s:%s", lang, path, kind, short)
}

func canonicalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return whitespaceRe.ReplaceAllString(s, " ")
}
