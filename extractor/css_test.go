package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanRules(t *testing.T) {
	css := `
		.btn { color: red; }
		#main, .content { padding: 0; }
		h1 { font-size: 2rem; }
	`

	rules := scanRules(css)
	require.Len(t, rules, 3)

	assert.Equal(t, ".btn", rules[0].Selector)
	assert.Equal(t, "color: red;", rules[0].Body)
	assert.Equal(t, "#main, .content", rules[1].Selector)
	assert.Equal(t, "h1", rules[2].Selector)
}

func TestScanRulesSkipsAtRules(t *testing.T) {
	css := `
		@media (max-width: 600px) {
			.btn { display: none; }
		}
		@import url("other.css");
		.kept { color: blue; }
	`

	rules := scanRules(css)

	// The whole @media block is consumed, including the rule nested in it.
	names := make([]string, 0, len(rules))
	for _, r := range rules {
		names = append(names, r.Selector)
	}
	assert.NotContains(t, names, ".btn")
	assert.Contains(t, names, ".kept")
}

func TestScanRulesToleratesMalformedCSS(t *testing.T) {
	inputs := []string{
		"",
		".unclosed { color: red;",
		"}}}{{{",
		"no braces at all",
	}
	for _, input := range inputs {
		assert.NotPanics(t, func() { scanRules(input) })
	}

	// An unclosed final rule still yields its body best-effort.
	rules := scanRules(".a { color: red;")
	require.Len(t, rules, 1)
	assert.Equal(t, ".a", rules[0].Selector)
	assert.Equal(t, "color: red;", rules[0].Body)
}

func TestRuleApplies(t *testing.T) {
	componentHTML := `<section id="signup"><button class="btn primary">Go</button></section>`

	// Class branch.
	assert.True(t, ruleApplies(".btn", componentHTML))
	assert.False(t, ruleApplies(".unused-class", componentHTML))

	// Any comma branch is enough.
	assert.True(t, ruleApplies(".unused-class, .btn:hover", componentHTML))

	// Id branch.
	assert.True(t, ruleApplies("#signup", componentHTML))
	assert.False(t, ruleApplies("#elsewhere", componentHTML))

	// Leading tag branch.
	assert.True(t, ruleApplies("button.missing-class", componentHTML))
	assert.False(t, ruleApplies("article", componentHTML))
}

func TestLeadingTagMatchesWholeTagName(t *testing.T) {
	// A p selector must not latch onto <picture>; the tag name has to end
	// where the markup's tag name ends.
	pictureOnly := `<section><picture><img src="a.png" alt=""></picture></section>`
	assert.False(t, ruleApplies("p", pictureOnly))

	assert.True(t, ruleApplies("p", `<section><p>Text</p></section>`))
	assert.True(t, ruleApplies("p", `<section><p class="lead">Text</p></section>`))
	assert.True(t, ruleApplies("picture", pictureOnly))

	// Later occurrences still count when the first is a longer tag.
	assert.True(t, ruleApplies("p", `<picture></picture><p>Text</p>`))
}

func TestComponentCSSAssociation(t *testing.T) {
	page := `<html><head><style>
		.btn { color: red; }
		.unused-class { color: green; }
		section { margin: 0; }
	</style></head><body>
		<section class="cta-block">
			<p>Sign up today and start building pages right away.</p>
			<button class="btn primary">Sign up</button>
		</section>
	</body></html>`

	components := Extract(page)
	require.Len(t, components, 1)

	css := components[0].CSS
	assert.Contains(t, css, ".btn { color: red; }")
	assert.Contains(t, css, "section { margin: 0; }")
	assert.NotContains(t, css, ".unused-class")
}

func TestCSSRuleOrderPreserved(t *testing.T) {
	page := `<html><head><style>
		.zebra { color: red; }
		.alpha { color: blue; }
	</style></head><body>
		<section class="zebra alpha"><p>Long enough text for extraction here.</p></section>
	</body></html>`

	components := Extract(page)
	require.Len(t, components, 1)

	css := components[0].CSS
	zebra := strings.Index(css, ".zebra")
	alpha := strings.Index(css, ".alpha")
	require.NotEqual(t, -1, zebra)
	require.NotEqual(t, -1, alpha)
	assert.Less(t, zebra, alpha, "rules must keep stylesheet order")
}
