package analyzer

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/atom"
)

// Fallbacks used when a fix cannot derive content from the document.
const (
	fallbackTitle       = "Untitled Page"
	fallbackDescription = "Page description"
	fallbackOgImage     = "https://placehold.co/1200x630"

	viewportContent = "width=device-width, initial-scale=1.0"
	faviconDataURI  = "data:image/svg+xml,<svg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 100 100'><text y='.9em' font-size='90'>&#9889;</text></svg>"
)

// fixHandlers maps fix ids to their remediation. The table is a closed
// vocabulary shared with the analyzer's issue output; unknown ids are no-ops.
var fixHandlers = map[string]func(*goquery.Document){
	"add-viewport":          fixViewport,
	"add-charset":           fixCharset,
	"add-lang":              fixLang,
	"add-alt-text":          fixAltText,
	"add-meta-description":  fixMetaDescription,
	"add-title":             fixTitle,
	"add-favicon":           fixFavicon,
	"add-og-title":          fixOgTitle,
	"add-og-description":    fixOgDescription,
	"add-og-image":          fixOgImage,
	"fix-heading-hierarchy": fixHeadingHierarchy,
}

// ApplyFixes applies the automatic remediation for every issue in the
// analysis that carries a fix id, in issue order, and returns the
// serialized document. Every fix checks the live tree before inserting,
// so applying fixes to an already-fixed document changes nothing.
func ApplyFixes(html string, analysis *SEOAnalysis) string {
	if strings.TrimSpace(html) == "" || analysis == nil {
		return html
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	for _, issue := range analysis.Issues {
		if issue.FixID == "" {
			continue
		}
		handler, ok := fixHandlers[issue.FixID]
		if !ok {
			continue
		}
		// A failing fix must not prevent the remaining fixes from running.
		runCheck(func() { handler(doc) })
	}

	out, err := doc.Html()
	if err != nil {
		return html
	}
	return out
}

// headSelection returns the document head, creating one when the parsed
// tree lacks it.
func headSelection(doc *goquery.Document) *goquery.Selection {
	head := doc.Find("head").First()
	if head.Length() == 0 {
		doc.Find("html").First().PrependHtml("<head></head>")
		head = doc.Find("head").First()
	}
	return head
}

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

func fixViewport(doc *goquery.Document) {
	if doc.Find("meta[name='viewport']").Length() > 0 {
		return
	}
	headSelection(doc).PrependHtml(
		fmt.Sprintf(`<meta name="viewport" content="%s">`, viewportContent))
}

func fixCharset(doc *goquery.Document) {
	if doc.Find("meta[charset]").Length() > 0 {
		return
	}
	found := false
	doc.Find("meta[http-equiv]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		equiv, _ := s.Attr("http-equiv")
		if strings.EqualFold(equiv, "Content-Type") {
			found = true
			return false
		}
		return true
	})
	if found {
		return
	}
	headSelection(doc).PrependHtml(`<meta charset="UTF-8">`)
}

func fixLang(doc *goquery.Document) {
	root := doc.Find("html").First()
	if lang, _ := root.Attr("lang"); lang != "" {
		return
	}
	root.SetAttr("lang", "en")
}

func fixAltText(doc *goquery.Document) {
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		if _, exists := s.Attr("alt"); !exists {
			s.SetAttr("alt", "")
		}
	})
}

func fixMetaDescription(doc *goquery.Document) {
	if doc.Find("meta[name='description']").Length() > 0 {
		return
	}
	desc := strings.TrimSpace(doc.Find("p").First().Text())
	if desc == "" {
		desc = fallbackDescription
	}
	if runes := []rune(desc); len(runes) > 160 {
		desc = string(runes[:160])
	}
	headSelection(doc).AppendHtml(
		fmt.Sprintf(`<meta name="description" content="%s">`, escapeAttr(desc)))
}

func fixTitle(doc *goquery.Document) {
	if doc.Find("title").Length() > 0 {
		return
	}
	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = fallbackTitle
	}
	headSelection(doc).AppendHtml(
		fmt.Sprintf("<title>%s</title>", escapeAttr(title)))
}

func fixFavicon(doc *goquery.Document) {
	if hasIconLink(doc) {
		return
	}
	headSelection(doc).AppendHtml(
		fmt.Sprintf(`<link rel="icon" href="%s">`, faviconDataURI))
}

func fixOgTitle(doc *goquery.Document) {
	if doc.Find("meta[property='og:title']").Length() > 0 {
		return
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = fallbackTitle
	}
	headSelection(doc).AppendHtml(
		fmt.Sprintf(`<meta property="og:title" content="%s">`, escapeAttr(title)))
}

func fixOgDescription(doc *goquery.Document) {
	if doc.Find("meta[property='og:description']").Length() > 0 {
		return
	}
	desc, _ := doc.Find("meta[name='description']").First().Attr("content")
	if desc == "" {
		desc = fallbackDescription
	}
	headSelection(doc).AppendHtml(
		fmt.Sprintf(`<meta property="og:description" content="%s">`, escapeAttr(desc)))
}

func fixOgImage(doc *goquery.Document) {
	if doc.Find("meta[property='og:image']").Length() > 0 {
		return
	}
	src, _ := doc.Find("img").First().Attr("src")
	if src == "" {
		src = fallbackOgImage
	}
	headSelection(doc).AppendHtml(
		fmt.Sprintf(`<meta property="og:image" content="%s">`, escapeAttr(src)))
}

// fixHeadingHierarchy rewrites headings in a single left-to-right pass so
// that no heading level jumps more than one above the preceding corrected
// level. Attributes and children of rewritten headings are preserved.
func fixHeadingHierarchy(doc *goquery.Document) {
	currentLevel := 0
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		node := s.Nodes[0]
		level := int(node.Data[1] - '0')
		if level > currentLevel+1 {
			level = currentLevel + 1
			tag := fmt.Sprintf("h%d", level)
			node.Data = tag
			node.DataAtom = atom.Lookup([]byte(tag))
		}
		currentLevel = level
	})
}
