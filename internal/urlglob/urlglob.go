// Package urlglob compiles Playwright-style URL globs so requests served
// outside the browser are routed exactly like page.Route would route them.
package urlglob

import (
	"fmt"
	"regexp"
	"strings"
)

// Glob is a compiled URL pattern.
type Glob struct {
	pattern string
	re      *regexp.Regexp
}

const escaped = `$^+.*()|\?{}[]`

// Compile translates a glob into an anchored regular expression.
//
//	*    any run of characters except '/'
//	**   any number of path segments when it stands alone between slashes
//	{,}  alternation
//	\x   literal x
//
// Everything else, '?' included, matches literally.
func Compile(pattern string) (*Glob, error) {
	var b strings.Builder
	b.WriteString("^")
	inGroup := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c == '\\' && i+1 < len(pattern) {
			i++
			writeLiteral(&b, pattern[i])
			continue
		}
		if c == '*' {
			var before byte
			if i > 0 {
				before = pattern[i-1]
			}
			stars := 1
			for i+1 < len(pattern) && pattern[i+1] == '*' {
				stars++
				i++
			}
			var after byte
			if i+1 < len(pattern) {
				after = pattern[i+1]
			}
			deep := stars > 1 && (before == '/' || before == 0) && (after == '/' || after == 0)
			if deep {
				b.WriteString(`((?:[^/]*(?:/|$))*)`)
				i++
			} else {
				b.WriteString(`([^/]*)`)
			}
			continue
		}
		switch c {
		case '{':
			if inGroup {
				return nil, fmt.Errorf("nested group in glob %q", pattern)
			}
			inGroup = true
			b.WriteString("(")
		case '}':
			if !inGroup {
				return nil, fmt.Errorf("unbalanced '}' in glob %q", pattern)
			}
			inGroup = false
			b.WriteString(")")
		case ',':
			if inGroup {
				b.WriteString("|")
			} else {
				b.WriteString(",")
			}
		default:
			writeLiteral(&b, c)
		}
	}
	if inGroup {
		return nil, fmt.Errorf("unterminated group in glob %q", pattern)
	}
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("failed to compile glob %q: %w", pattern, err)
	}
	return &Glob{pattern: pattern, re: re}, nil
}

// MustCompile is Compile that panics on error.
func MustCompile(pattern string) *Glob {
	g, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return g
}

func writeLiteral(b *strings.Builder, c byte) {
	if strings.IndexByte(escaped, c) >= 0 {
		b.WriteByte('\\')
	}
	b.WriteByte(c)
}

// Match reports whether the full URL matches the glob.
func (g *Glob) Match(url string) bool {
	return g.re.MatchString(url)
}

func (g *Glob) String() string {
	return g.pattern
}
