package usecase

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	slugPattern  = regexp.MustCompile(`[^a-z0-9]+`)
)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ParseDate parses a YYYY-MM-DD value.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Slugify lowercases a name and collapses every non-alphanumeric run into
// a single hyphen.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugPattern.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "test"
	}
	return slug
}
