package menu

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// Slugify turns a display name into a URL slug: lower-case, runs of
// non-alphanumerics collapsed into single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen

	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "menu"
	}
	return slug
}

// UniqueSlug resolves slug collisions by suffixing an incrementing
// counter: bistro-adelaide, bistro-adelaide-1, bistro-adelaide-2, ...
func UniqueSlug(ctx context.Context, repo Repository, name string) (string, error) {
	base := Slugify(name)

	slug := base
	for i := 1; ; i++ {
		exists, err := repo.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}
