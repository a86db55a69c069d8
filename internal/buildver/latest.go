// Package buildver picks the latest announced build out of feed post titles.
package buildver

import "strings"

// Latest returns the first whitespace-separated token, scanning titles in
// order, that starts with 'v' and ends with '0', minus its leading 'v'.
// Titles are expected newest first. The token is not checked further, so
// "v22.40" yields "22.40" and so does any other token of that shape.
func Latest(titles []string) (string, bool) {
	for _, title := range titles {
		for _, token := range strings.Fields(title) {
			if IsBuildToken(token) {
				return strings.TrimPrefix(token, "v"), true
			}
		}
	}
	return "", false
}

// IsBuildToken reports whether token looks like an announced build, e.g. v22.40.
func IsBuildToken(token string) bool {
	return strings.HasPrefix(token, "v") && strings.HasSuffix(token, "0")
}
