package extractor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"golang.org/x/net/html"
)

// pass1Selectors are tried in priority order; earlier selectors claim
// elements before later ones are considered.
var pass1Selectors = []string{
	"header",
	"nav",
	"main > section",
	"main > div",
	"body > section",
	"body > div > section",
	"body > div > div",
	"section",
	"footer",
	"main",
	"aside",
}

type classPattern struct {
	keyword string
	ctype   ComponentType
}

// classPatterns map class-name keywords to component types. Order matters:
// the first keyword found in the class string wins.
var classPatterns = []classPattern{
	{"hero", TypeHero},
	{"feature", TypeFeatures},
	{"pricing", TypePricing},
	{"price", TypePricing},
	{"testimonial", TypeTestimonials},
	{"review", TypeTestimonials},
	{"cta", TypeCTA},
	{"call-to-action", TypeCTA},
	{"gallery", TypeGallery},
	{"portfolio", TypeGallery},
	{"contact", TypeForm},
	{"form", TypeForm},
	{"navigation", TypeNav},
	{"nav", TypeNav},
	{"footer", TypeFooter},
	{"header", TypeHeader},
	{"about", TypeOther},
}

// extraction tracks state for a single Extract call: the claimed-set keyed
// by node pointer (stable for one parsed tree), per-type name counters and
// the parsed stylesheet rules.
type extraction struct {
	claimed    map[*html.Node]bool
	typeCounts map[ComponentType]int
	rules      []cssRule
	components []ExtractedComponent
}

// Extract segments the given HTML into a flat list of disjoint components
// using semantic selectors first and class-name patterns as a fallback.
// It is a pure function; empty input yields an empty list.
func Extract(pageHTML string) []ExtractedComponent {
	components := []ExtractedComponent{}
	if strings.TrimSpace(pageHTML) == "" {
		return components
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return components
	}

	ex := &extraction{
		claimed:    make(map[*html.Node]bool),
		typeCounts: make(map[ComponentType]int),
		rules:      parseStylesheets(doc),
		components: components,
	}

	// Pass 1: semantic and structural selectors.
	for _, selector := range pass1Selectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if ex.claimedOrInsideClaimed(s.Nodes[0]) || ex.containsClaimed(s.Nodes[0]) {
				return
			}
			text := strings.TrimSpace(s.Text())
			if utf8.RuneCountInString(text) < 10 && s.Children().Length() == 0 {
				return
			}
			tag := goquery.NodeName(s)
			// A <main> with sections inside defers to the finer sections.
			if tag == "main" && s.Find("section").Length() > 0 {
				return
			}
			// A <div> directly wrapping structural elements is a wrapper,
			// not a component.
			if tag == "div" && s.ChildrenFiltered("header, footer, nav, section").Length() > 0 {
				return
			}
			ex.accept(s, detectComponentType(s))
		})
	}

	// Pass 2: class-name patterns on whatever pass 1 left unclaimed.
	doc.Find("div[class], section[class]").Each(func(_ int, s *goquery.Selection) {
		if ex.claimedOrInsideClaimed(s.Nodes[0]) || ex.containsClaimed(s.Nodes[0]) {
			return
		}
		class, _ := s.Attr("class")
		if ctype, ok := matchClassPattern(strings.ToLower(class)); ok {
			ex.accept(s, ctype)
		}
	})

	return ex.components
}

func (ex *extraction) claimedOrInsideClaimed(node *html.Node) bool {
	for n := node; n != nil; n = n.Parent {
		if ex.claimed[n] {
			return true
		}
	}
	return false
}

// containsClaimed reports whether any already-claimed element sits inside
// the candidate's subtree. Accepting such a candidate would nest one
// component inside another; extracted components must stay disjoint.
func (ex *extraction) containsClaimed(node *html.Node) bool {
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if ex.claimed[c] || ex.containsClaimed(c) {
			return true
		}
	}
	return false
}

func (ex *extraction) accept(s *goquery.Selection, ctype ComponentType) {
	outer, err := goquery.OuterHtml(s)
	if err != nil {
		return
	}
	ex.claimed[s.Nodes[0]] = true

	count := ex.typeCounts[ctype] + 1
	ex.typeCounts[ctype] = count

	ex.components = append(ex.components, ExtractedComponent{
		ID:          uuid.NewString(),
		Name:        fmt.Sprintf("%s %d", typeLabels[ctype], count),
		HTML:        outer,
		CSS:         cssForComponent(ex.rules, outer),
		Type:        ctype,
		Description: describe(s),
	})
}

func matchClassPattern(class string) (ComponentType, bool) {
	for _, p := range classPatterns {
		if strings.Contains(class, p.keyword) {
			return p.ctype, true
		}
	}
	return TypeOther, false
}

// detectComponentType classifies an element by tag, then class/id keywords,
// then content heuristics.
func detectComponentType(s *goquery.Selection) ComponentType {
	switch goquery.NodeName(s) {
	case "header":
		return TypeHeader
	case "nav":
		return TypeNav
	case "footer":
		return TypeFooter
	case "aside":
		return TypeOther
	}

	class, _ := s.Attr("class")
	id, _ := s.Attr("id")
	if ctype, ok := matchClassPattern(strings.ToLower(class + " " + id)); ok {
		return ctype
	}

	if s.Find("form").Length() > 0 {
		return TypeForm
	}
	text := strings.ToLower(s.Text())
	if strings.Contains(text, "pricing") || strings.Contains(text, "per month") {
		return TypePricing
	}
	if strings.Contains(text, "testimonial") || strings.Contains(text, "what our") {
		return TypeTestimonials
	}
	return TypeOther
}

// describe builds a short pipe-joined summary of the element's contents.
func describe(s *goquery.Selection) string {
	parts := []string{goquery.NodeName(s)}

	if n := s.Children().Length(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d child elements", n))
	}
	if n := s.Find("img").Length(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d images", n))
	}
	if s.Find("form").Length() > 0 {
		parts = append(parts, "contains form")
	}
	if n := s.Find("a").Length(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d links", n))
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(s.Text())); n > 0 {
		parts = append(parts, fmt.Sprintf("%d characters of text", n))
	}

	return strings.Join(parts, " | ")
}
