package feed

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ExtractAttr streams markup from r and returns the value of attr for every
// start or self-closing tag named tag, in encounter order. Tags without the
// attribute are skipped. Everything else in the document is ignored.
// Tag and attribute names are matched case-insensitively.
func ExtractAttr(r io.Reader, tag, attr string) ([]string, error) {
	tag = strings.ToLower(tag)
	attr = strings.ToLower(attr)

	z := html.NewTokenizer(r)
	var values []string
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return values, nil
			}
			return values, fmt.Errorf("tokenize feed: %w", z.Err())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != tag {
				continue
			}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) == attr {
					values = append(values, string(val))
					break
				}
			}
		}
	}
}
