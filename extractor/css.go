package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// cssRule is one selector/body pair scanned out of a <style> block.
type cssRule struct {
	Selector string
	Body     string
}

var (
	classFragmentRe = regexp.MustCompile(`\.([A-Za-z0-9_-]+)`)
	idFragmentRe    = regexp.MustCompile(`#([A-Za-z0-9_-]+)`)
	leadingTagRe    = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9]*)`)
)

// parseStylesheets scans every <style> block in the document into a flat
// rule list, preserving source order.
func parseStylesheets(doc *goquery.Document) []cssRule {
	var rules []cssRule
	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		rules = append(rules, scanRules(s.Text())...)
	})
	return rules
}

// scanRules is a deliberately simple brace-matching scanner, not a CSS
// parser. At-rules (and everything nested inside them) are skipped, and
// escaped braces inside strings are not handled. That approximation is
// accepted: the input is generated page markup, not arbitrary stylesheets.
func scanRules(css string) []cssRule {
	var rules []cssRule

	i := 0
	for i < len(css) {
		open := strings.IndexByte(css[i:], '{')
		if open < 0 {
			break
		}
		selector := strings.TrimSpace(css[i : i+open])

		depth := 1
		j := i + open + 1
		for j < len(css) && depth > 0 {
			switch css[j] {
			case '{':
				depth++
			case '}':
				depth--
			}
			j++
		}

		body := css[i+open+1 : j]
		if depth == 0 {
			body = css[i+open+1 : j-1]
		}

		if selector != "" && !strings.HasPrefix(selector, "@") {
			rules = append(rules, cssRule{
				Selector: selector,
				Body:     strings.TrimSpace(body),
			})
		}
		i = j
	}

	return rules
}

// cssForComponent returns the rules relevant to the component's serialized
// HTML, in stylesheet order. A rule is relevant when any comma-branch of
// its selector references a class, id or leading tag that occurs in the
// markup; the whole rule is then emitted, not just the matching branch.
func cssForComponent(rules []cssRule, componentHTML string) string {
	var out []string
	for _, rule := range rules {
		if ruleApplies(rule.Selector, componentHTML) {
			out = append(out, fmt.Sprintf("%s { %s }", rule.Selector, rule.Body))
		}
	}
	return strings.Join(out, "\n\n")
}

func ruleApplies(selector, componentHTML string) bool {
	for _, branch := range strings.Split(selector, ",") {
		branch = strings.TrimSpace(branch)
		if branch == "" {
			continue
		}
		if branchApplies(branch, componentHTML) {
			return true
		}
	}
	return false
}

func branchApplies(branch, componentHTML string) bool {
	for _, m := range classFragmentRe.FindAllStringSubmatch(branch, -1) {
		if strings.Contains(componentHTML, m[1]) {
			return true
		}
	}
	for _, m := range idFragmentRe.FindAllStringSubmatch(branch, -1) {
		if strings.Contains(componentHTML, m[1]) {
			return true
		}
	}
	if m := leadingTagRe.FindStringSubmatch(branch); m != nil {
		if containsOpeningTag(componentHTML, m[1]) {
			return true
		}
	}
	return false
}

// containsOpeningTag reports whether the markup contains an opening tag with
// exactly the given name. The tag name must end at the match: a selector for
// p must not match <picture>.
func containsOpeningTag(markup, tag string) bool {
	needle := "<" + tag
	for start := 0; ; {
		idx := strings.Index(markup[start:], needle)
		if idx < 0 {
			return false
		}
		after := start + idx + len(needle)
		if after < len(markup) {
			switch markup[after] {
			case '>', ' ', '\t', '\n', '/':
				return true
			}
		}
		start = start + idx + 1
	}
}
