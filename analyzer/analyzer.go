package analyzer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Score penalties per issue severity.
const (
	errorPenalty   = 15
	warningPenalty = 7
	infoPenalty    = 3
)

// genericLinkText is the closed set of link labels considered non-descriptive.
var genericLinkText = map[string]bool{
	"click here": true,
	"here":       true,
	"read more":  true,
	"link":       true,
	"more":       true,
}

// Analyze parses the given HTML and runs every SEO check against it.
// It is a pure function: no I/O, no shared state, deterministic output.
// Malformed markup is parsed best-effort and never causes an error.
func Analyze(html string) *SEOAnalysis {
	analysis := &SEOAnalysis{}

	if strings.TrimSpace(html) == "" {
		return analysis
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return analysis
	}

	// Each check is independent; a panic inside one check skips that
	// check only, so a single malformed construct cannot take down
	// the whole analysis.
	runCheck(func() { checkTitle(doc, analysis) })
	runCheck(func() { checkMetaDescription(doc, analysis) })
	runCheck(func() { checkViewport(doc, analysis) })
	runCheck(func() { checkCharset(doc, analysis) })
	runCheck(func() { checkLang(doc, analysis) })
	runCheck(func() { checkOpenGraph(doc, analysis) })
	runCheck(func() { checkTwitterCard(doc, analysis) })
	runCheck(func() { checkCanonical(doc, analysis) })
	runCheck(func() { checkFavicon(doc, analysis) })
	runCheck(func() { checkHeadings(doc, analysis) })
	runCheck(func() { checkWordCount(doc, analysis) })
	runCheck(func() { checkImages(doc, analysis) })
	runCheck(func() { checkLinkText(doc, analysis) })
	runCheck(func() { checkAnchorTargets(doc, analysis) })
	runCheck(func() { checkInlineStyles(doc, analysis) })
	runCheck(func() { checkScriptCount(doc, analysis) })
	runCheck(func() { checkFormLabels(doc, analysis) })

	analysis.Score = calculateScore(analysis)
	return analysis
}

func runCheck(fn func()) {
	defer func() {
		_ = recover()
	}()
	fn()
}

func (a *SEOAnalysis) addIssue(sev Severity, cat Category, message, fixID string) {
	a.Issues = append(a.Issues, Issue{
		Severity: sev,
		Category: cat,
		Message:  message,
		FixID:    fixID,
	})
}

func calculateScore(a *SEOAnalysis) int {
	score := 100
	score -= errorPenalty * a.ErrorCount()
	score -= warningPenalty * a.WarningCount()
	score -= infoPenalty * a.InfoCount()

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func checkTitle(doc *goquery.Document, a *SEOAnalysis) {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	length := utf8.RuneCountInString(title)
	a.Meta.Title = title
	a.Meta.TitleLength = length

	if title == "" {
		a.addIssue(SeverityError, CategoryMetaTags, "Page has no <title> tag", "add-title")
		return
	}
	if length < 30 || length > 60 {
		a.addIssue(SeverityWarning, CategoryMetaTags,
			fmt.Sprintf("Title is %d characters (recommended 30-60)", length), "")
	}
}

func checkMetaDescription(doc *goquery.Document, a *SEOAnalysis) {
	desc, _ := doc.Find("meta[name='description']").First().Attr("content")
	length := utf8.RuneCountInString(desc)
	a.Meta.Description = desc
	a.Meta.DescriptionLen = length

	if desc == "" {
		a.addIssue(SeverityError, CategoryMetaTags, "Missing meta description", "add-meta-description")
		return
	}
	if length < 120 || length > 160 {
		a.addIssue(SeverityWarning, CategoryMetaTags,
			fmt.Sprintf("Meta description is %d characters (recommended 120-160)", length), "")
	}
}

func checkViewport(doc *goquery.Document, a *SEOAnalysis) {
	a.Meta.HasViewport = doc.Find("meta[name='viewport']").Length() > 0
	if !a.Meta.HasViewport {
		a.addIssue(SeverityError, CategoryMetaTags, "Missing viewport meta tag", "add-viewport")
	}
}

func checkCharset(doc *goquery.Document, a *SEOAnalysis) {
	hasCharset := doc.Find("meta[charset]").Length() > 0
	if !hasCharset {
		doc.Find("meta[http-equiv]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			equiv, _ := s.Attr("http-equiv")
			if strings.EqualFold(equiv, "Content-Type") {
				hasCharset = true
				return false
			}
			return true
		})
	}
	a.Meta.HasCharset = hasCharset
	if !hasCharset {
		a.addIssue(SeverityWarning, CategoryMetaTags, "Missing charset declaration", "add-charset")
	}
}

func checkLang(doc *goquery.Document, a *SEOAnalysis) {
	lang, _ := doc.Find("html").First().Attr("lang")
	a.Meta.HasLang = lang != ""
	if lang == "" {
		a.addIssue(SeverityWarning, CategoryAccessibility,
			"Missing lang attribute on <html> element", "add-lang")
	}
}

func checkOpenGraph(doc *goquery.Document, a *SEOAnalysis) {
	hasOgTitle := doc.Find("meta[property='og:title']").Length() > 0
	hasOgDesc := doc.Find("meta[property='og:description']").Length() > 0
	hasOgImage := doc.Find("meta[property='og:image']").Length() > 0
	a.Meta.HasOgTags = hasOgTitle && hasOgDesc

	if !hasOgTitle {
		a.addIssue(SeverityInfo, CategoryMetaTags, "Missing og:title for social sharing", "add-og-title")
	}
	if !hasOgDesc {
		a.addIssue(SeverityInfo, CategoryMetaTags, "Missing og:description for social sharing", "add-og-description")
	}
	if !hasOgImage {
		a.addIssue(SeverityInfo, CategoryMetaTags, "Missing og:image for social sharing", "add-og-image")
	}
}

func checkTwitterCard(doc *goquery.Document, a *SEOAnalysis) {
	hasCard := doc.Find("meta[name='twitter:card']").Length() > 0
	a.Meta.HasTwitterCard = hasCard

	if !hasCard {
		a.addIssue(SeverityInfo, CategoryMetaTags, "Missing twitter:card meta tag", "")
		return
	}
	if doc.Find("meta[name='twitter:site']").Length() == 0 {
		a.addIssue(SeverityInfo, CategoryMetaTags, "twitter:card present but twitter:site is missing", "")
	}
}

func checkCanonical(doc *goquery.Document, a *SEOAnalysis) {
	a.Meta.HasCanonical = doc.Find("link[rel='canonical']").Length() > 0
	if !a.Meta.HasCanonical {
		a.addIssue(SeverityInfo, CategoryMetaTags, "Missing canonical link", "")
	}
}

// iconRels are the rel values that count as a favicon declaration.
var iconRels = map[string]bool{
	"icon":             true,
	"shortcut icon":    true,
	"apple-touch-icon": true,
}

func hasIconLink(doc *goquery.Document) bool {
	found := false
	doc.Find("link[rel]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rel, _ := s.Attr("rel")
		if iconRels[strings.ToLower(strings.TrimSpace(rel))] {
			found = true
			return false
		}
		return true
	})
	return found
}

func checkFavicon(doc *goquery.Document, a *SEOAnalysis) {
	a.Meta.HasFavicon = hasIconLink(doc)
	if !a.Meta.HasFavicon {
		a.addIssue(SeverityInfo, CategoryMetaTags, "Missing favicon", "add-favicon")
	}
}

func checkHeadings(doc *goquery.Document, a *SEOAnalysis) {
	h1Count := 0
	prevLevel := 0
	skipFound := false

	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		level := int(s.Nodes[0].Data[1] - '0')
		text := strings.TrimSpace(s.Text())

		entry := fmt.Sprintf("H%d: %s", level, text)
		if text == "" {
			entry = fmt.Sprintf("H%d: (empty)", level)
		}
		a.Meta.Headings = append(a.Meta.Headings, entry)

		if level == 1 {
			h1Count++
		}
		if prevLevel > 0 && level > prevLevel+1 {
			skipFound = true
		}
		prevLevel = level
	})

	if h1Count == 0 {
		a.addIssue(SeverityError, CategoryContent, "Page has no <h1> heading", "")
	} else if h1Count > 1 {
		a.addIssue(SeverityWarning, CategoryContent,
			fmt.Sprintf("Found %d <h1> headings, use exactly one", h1Count), "")
	}
	if skipFound {
		a.addIssue(SeverityWarning, CategoryStructure,
			"Heading hierarchy skips levels", "fix-heading-hierarchy")
	}
}

func checkWordCount(doc *goquery.Document, a *SEOAnalysis) {
	words := strings.Fields(strings.TrimSpace(doc.Find("body").Text()))
	a.Meta.WordCount = len(words)

	switch {
	case len(words) < 50:
		a.addIssue(SeverityWarning, CategoryContent,
			fmt.Sprintf("Very thin content: only %d words", len(words)), "")
	case len(words) < 300:
		a.addIssue(SeverityInfo, CategoryContent,
			fmt.Sprintf("Light content: %d words (aim for 300+)", len(words)), "")
	}
}

func checkImages(doc *goquery.Document, a *SEOAnalysis) {
	images := doc.Find("img")
	a.Meta.ImageCount = images.Length()

	missingAlt := 0
	images.Each(func(_ int, s *goquery.Selection) {
		alt, exists := s.Attr("alt")
		if !exists {
			missingAlt++
			return
		}
		if n := utf8.RuneCountInString(alt); n > 125 {
			a.addIssue(SeverityInfo, CategoryImages,
				fmt.Sprintf("Image alt text is %d characters (keep under 125)", n), "")
		}
	})

	if missingAlt > 0 {
		a.addIssue(SeverityError, CategoryImages,
			fmt.Sprintf("%d image(s) missing alt attributes", missingAlt), "add-alt-text")
	}
}

func checkLinkText(doc *goquery.Document, a *SEOAnalysis) {
	links := doc.Find("a")
	a.Meta.LinkCount = links.Length()

	links.Each(func(_ int, s *goquery.Selection) {
		text := strings.ToLower(strings.TrimSpace(s.Text()))
		if genericLinkText[text] {
			a.addIssue(SeverityWarning, CategoryAccessibility,
				fmt.Sprintf("Non-descriptive link text: %q", text), "")
		}
	})
}

func checkAnchorTargets(doc *goquery.Document, a *SEOAnalysis) {
	ids := make(map[string]bool)
	doc.Find("[id]").Each(func(_ int, s *goquery.Selection) {
		if id, ok := s.Attr("id"); ok {
			ids[id] = true
		}
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !strings.HasPrefix(href, "#") || len(href) <= 1 {
			return
		}
		if !ids[href[1:]] {
			a.addIssue(SeverityWarning, CategoryStructure,
				fmt.Sprintf("Anchor link %q has no matching element id", href), "")
		}
	})
}

func checkInlineStyles(doc *goquery.Document, a *SEOAnalysis) {
	styled := doc.Find("[style]").Length()
	if styled > 15 {
		a.addIssue(SeverityInfo, CategoryPerformance,
			fmt.Sprintf("%d elements use inline styles, consider a stylesheet", styled), "")
	}
}

func checkScriptCount(doc *goquery.Document, a *SEOAnalysis) {
	scripts := doc.Find("script[src]").Length()
	if scripts > 5 {
		a.addIssue(SeverityInfo, CategoryPerformance,
			fmt.Sprintf("%d external scripts may slow page load", scripts), "")
	}
}

func checkFormLabels(doc *goquery.Document, a *SEOAnalysis) {
	labeledFor := make(map[string]bool)
	doc.Find("label[for]").Each(func(_ int, s *goquery.Selection) {
		if forID, ok := s.Attr("for"); ok {
			labeledFor[forID] = true
		}
	})

	unlabeled := 0
	doc.Find("input, textarea, select").Each(func(_ int, s *goquery.Selection) {
		if _, ok := s.Attr("aria-label"); ok {
			return
		}
		if _, ok := s.Attr("aria-labelledby"); ok {
			return
		}
		if id, ok := s.Attr("id"); ok && labeledFor[id] {
			return
		}
		if s.ParentsFiltered("label").Length() > 0 {
			return
		}
		unlabeled++
	})

	if unlabeled > 0 {
		a.addIssue(SeverityWarning, CategoryAccessibility,
			fmt.Sprintf("%d form field(s) without an accessible label", unlabeled), "")
	}
}
