// Package html composes the single-file document: data URLs, the inline
// globals script and its insertion into the application template.
package html

import (
	"errors"
	"fmt"
	"io"
	"strings"

	nethtml "golang.org/x/net/html"
)

// ErrTemplateMarkerNotFound is returned when a template has no
// <script type="module"> start tag to insert before.
var ErrTemplateMarkerNotFound = errors.New(`template has no <script type="module"> tag`)

// FindModuleScript returns the byte offset of the first <script> start tag
// whose type is "module". Tags inside comments, attribute values or other
// scripts' bodies are not considered.
func FindModuleScript(doc string) (int, error) {
	z := nethtml.NewTokenizer(strings.NewReader(doc))
	offset := 0
	for {
		tt := z.Next()
		n := len(z.Raw())

		switch tt {
		case nethtml.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return -1, ErrTemplateMarkerNotFound
			}
			return -1, fmt.Errorf("parsing template: %w", z.Err())
		case nethtml.StartTagToken, nethtml.SelfClosingTagToken:
			if script, module := scriptTag(z); script && module {
				return offset, nil
			}
		}
		offset += n
	}
}

// scriptTag reports whether the current start tag is a script, and whether
// its type attribute is "module". Only the first type attribute counts;
// browsers drop later duplicates.
func scriptTag(z *nethtml.Tokenizer) (script, module bool) {
	name, hasAttr := z.TagName()
	if string(name) != "script" {
		return false, false
	}
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		if string(key) == "type" {
			return true, strings.EqualFold(strings.TrimSpace(string(val)), "module")
		}
	}
	return true, false
}

// PatchTemplate inserts script, followed by a newline, immediately before the
// first module script tag of tmpl. Every other byte of tmpl is preserved.
func PatchTemplate(tmpl, script string) (string, error) {
	at, err := FindModuleScript(tmpl)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(tmpl) + len(script) + 1)
	b.WriteString(tmpl[:at])
	b.WriteString(script)
	b.WriteByte('\n')
	b.WriteString(tmpl[at:])
	return b.String(), nil
}

// InlineScripts returns the bodies of the classic (non-module, inline)
// scripts that precede the first module script of doc.
func InlineScripts(doc string) ([]string, error) {
	z := nethtml.NewTokenizer(strings.NewReader(doc))
	var bodies []string
	inScript := false
	for {
		switch z.Next() {
		case nethtml.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return bodies, nil
			}
			return nil, fmt.Errorf("parsing document: %w", z.Err())
		case nethtml.StartTagToken:
			script, module := scriptTag(z)
			if module {
				return bodies, nil
			}
			inScript = script
		case nethtml.TextToken:
			if inScript {
				bodies = append(bodies, string(z.Raw()))
			}
		case nethtml.EndTagToken:
			inScript = false
		}
	}
}
