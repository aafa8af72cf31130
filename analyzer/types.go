package analyzer

// Severity indicates how strongly an issue affects the page score.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Category groups issues by the area of the page they concern.
type Category string

const (
	CategoryMetaTags      Category = "meta-tags"
	CategoryContent       Category = "content"
	CategoryImages        Category = "images"
	CategoryStructure     Category = "structure"
	CategoryPerformance   Category = "performance"
	CategoryAccessibility Category = "accessibility"
)

// Issue represents a single detected problem. FixID, when non-empty,
// names an automatic remediation that ApplyFixes understands.
type Issue struct {
	Severity Severity `json:"severity"`
	Category Category `json:"category"`
	Message  string   `json:"message"`
	FixID    string   `json:"fixId,omitempty"`
}

// PageMeta is a snapshot of the signals detected during analysis,
// recorded whether or not they produced issues.
type PageMeta struct {
	Title          string   `json:"title"`
	TitleLength    int      `json:"titleLength"`
	Description    string   `json:"description"`
	DescriptionLen int      `json:"descriptionLength"`
	HasViewport    bool     `json:"hasViewport"`
	HasCharset     bool     `json:"hasCharset"`
	HasLang        bool     `json:"hasLang"`
	HasOgTags      bool     `json:"hasOgTags"`
	HasTwitterCard bool     `json:"hasTwitterCard"`
	HasCanonical   bool     `json:"hasCanonical"`
	HasFavicon     bool     `json:"hasFavicon"`
	Headings       []string `json:"headings"`
	WordCount      int      `json:"wordCount"`
	ImageCount     int      `json:"imageCount"`
	LinkCount      int      `json:"linkCount"`
}

// SEOAnalysis is the complete result of analyzing one HTML document.
type SEOAnalysis struct {
	Score  int      `json:"score"`
	Issues []Issue  `json:"issues"`
	Meta   PageMeta `json:"meta"`
}

// ErrorCount returns the number of error-severity issues.
func (a *SEOAnalysis) ErrorCount() int { return a.countBySeverity(SeverityError) }

// WarningCount returns the number of warning-severity issues.
func (a *SEOAnalysis) WarningCount() int { return a.countBySeverity(SeverityWarning) }

// InfoCount returns the number of info-severity issues.
func (a *SEOAnalysis) InfoCount() int { return a.countBySeverity(SeverityInfo) }

func (a *SEOAnalysis) countBySeverity(sev Severity) int {
	count := 0
	for _, issue := range a.Issues {
		if issue.Severity == sev {
			count++
		}
	}
	return count
}
