// Package features extracts structural and textual features from answer
// bodies: length bucket, code blocks, embedded images, and external
// references. Bodies are the rendered-HTML form stored in the dump, so the
// markers are HTML tags, not Markdown.
package features

import (
	"regexp"
	"strings"

	"github.com/anvgorok/repshape/internal/models"
)

var (
	wordPattern = regexp.MustCompile(`\w+`)
	codePattern = regexp.MustCompile(`(?s)<code>(.*?)</code>`)
	imgPattern  = regexp.MustCompile(`<img\s`)
	linkPattern = regexp.MustCompile(`<a href="([^"]+)"`)
)

// Extractor derives AnswerFeatures fields from raw answer bodies using
// configurable thresholds.
type Extractor struct {
	minCodeLines int
	shortWords   int
	longWords    int
	siteHost     string
}

// New creates an Extractor. siteHost is the Q&A site's own domain; links to
// it do not count as external references.
func New(minCodeLines, shortWords, longWords int, siteHost string) *Extractor {
	return &Extractor{
		minCodeLines: minCodeLines,
		shortWords:   shortWords,
		longWords:    longWords,
		siteHost:     siteHost,
	}
}

// Extract derives the body-dependent feature fields from one answer body.
// The ok return is false for a missing or empty body, which carries no
// signal and is skipped upstream.
func (e *Extractor) Extract(body string) (models.AnswerFeatures, bool) {
	if body == "" {
		return models.AnswerFeatures{}, false
	}

	words := len(wordPattern.FindAllString(body, -1))

	return models.AnswerFeatures{
		WordCount:    words,
		LengthBucket: e.bucket(words),
		HasCode:      e.hasCode(body),
		HasImage:     imgPattern.MatchString(body),
		HasRef:       e.hasExternalRef(body),
	}, true
}

// bucket maps a word count to a length bucket. The thresholds are strict
// inequalities: exactly shortWords or longWords words is Medium.
func (e *Extractor) bucket(words int) models.LengthBucket {
	switch {
	case words > e.longWords:
		return models.LengthLong
	case words < e.shortWords:
		return models.LengthShort
	default:
		return models.LengthMedium
	}
}

// hasCode reports whether at least one code span has minCodeLines or more
// lines. The segment before the first newline counts as a line.
func (e *Extractor) hasCode(body string) bool {
	for _, m := range codePattern.FindAllStringSubmatch(body, -1) {
		if len(splitLines(m[1])) >= e.minCodeLines {
			return true
		}
	}
	return false
}

// hasExternalRef reports whether the body links anywhere other than the
// site's own host. Relative links stay on-site and never count; absolute and
// scheme-relative links count unless their host is the site's own.
func (e *Extractor) hasExternalRef(body string) bool {
	for _, m := range linkPattern.FindAllStringSubmatch(body, -1) {
		host, absolute := linkHost(m[1])
		if absolute && host != e.siteHost {
			return true
		}
	}
	return false
}

// linkHost extracts the host of an absolute or scheme-relative link target.
// The second return is false for relative targets.
func linkHost(target string) (string, bool) {
	var rest string
	switch {
	case strings.HasPrefix(target, "//"):
		rest = target[2:]
	default:
		idx := strings.Index(target, "://")
		if idx < 0 {
			return "", false
		}
		rest = target[idx+3:]
	}
	if slash := strings.IndexByte(rest, '/'); slash >= 0 {
		rest = rest[:slash]
	}
	return rest, true
}

// splitLines splits on line terminators (\n, \r\n, or bare \r). An empty
// span has no lines, and a terminator at the end of the span closes the last
// line rather than opening an empty one; rendered code blocks routinely end
// with a newline before the closing tag.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
