package wiki

import (
	"regexp"
	"strings"
)

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
	slugStripper = regexp.MustCompile(`[^a-z0-9_-]`)
)

// Slugify derives a slug from a title: lower-case, spaces become hyphens,
// everything else outside [a-z0-9_-] is dropped.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = strings.ReplaceAll(s, " ", "-")
	s = slugStripper.ReplaceAllString(s, "")
	return strings.Trim(s, "-_")
}
