package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEmptyInput(t *testing.T) {
	assert.Empty(t, Extract(""))
	assert.Empty(t, Extract("   \n\t"))
}

func TestExtractHeroSection(t *testing.T) {
	text := strings.Repeat("Build beautiful pages fast. ", 8) // ~220 characters
	page := `<html><body><section class="hero-banner"><h1>Welcome</h1><p>` + text + `</p></section></body></html>`

	components := Extract(page)
	require.Len(t, components, 1)

	hero := components[0]
	assert.Equal(t, TypeHero, hero.Type)
	assert.Equal(t, "Hero Section 1", hero.Name)
	assert.Contains(t, hero.HTML, `class="hero-banner"`)
	assert.NotEmpty(t, hero.ID)
	assert.Contains(t, hero.Description, "section")
}

func TestExtractTextThresholdCountsRunes(t *testing.T) {
	// 5 two-byte runes are 10 bytes but still under the 10-character floor.
	page := `<html><body><section>ééééé</section></body></html>`
	assert.Empty(t, Extract(page))

	page = `<html><body><section>` + strings.Repeat("é", 12) + `</section></body></html>`
	components := Extract(page)
	require.Len(t, components, 1)
	assert.Contains(t, components[0].Description, "12 characters of text")
}

func TestExtractSemanticLandmarks(t *testing.T) {
	page := `<html><body>
		<header><h1>Site Name</h1><p>Tagline goes here</p></header>
		<nav><a href="/">Home</a><a href="/about">About</a></nav>
		<section><h2>Main content</h2><p>A fairly long paragraph of body text.</p></section>
		<footer><p>Copyright 2025, all rights reserved.</p></footer>
	</body></html>`

	components := Extract(page)
	require.Len(t, components, 4)

	types := make([]ComponentType, 0, len(components))
	for _, c := range components {
		types = append(types, c.Type)
	}
	assert.Contains(t, types, TypeHeader)
	assert.Contains(t, types, TypeNav)
	assert.Contains(t, types, TypeFooter)
}

func TestExtractDisjointness(t *testing.T) {
	page := `<html><body>
		<main>
			<section class="hero"><h1>Hero copy that is long enough</h1></section>
			<section class="features"><h2>Feature list with details</h2></section>
		</main>
		<footer><p>Footer text long enough to matter.</p></footer>
	</body></html>`

	components := Extract(page)
	require.NotEmpty(t, components)

	// No component's markup may contain another's: claimed ancestors win
	// and descendants are never re-emitted.
	for i, a := range components {
		for j, b := range components {
			if i == j {
				continue
			}
			assert.NotContains(t, a.HTML, b.HTML,
				"component %q nests component %q", a.Name, b.Name)
		}
	}
}

func TestMainWithSectionsDefersToSections(t *testing.T) {
	page := `<html><body><main>
		<section class="hero"><h1>Hero copy that is long enough</h1></section>
	</main></body></html>`

	components := Extract(page)
	require.Len(t, components, 1)
	assert.Equal(t, TypeHero, components[0].Type)
}

func TestWrapperDivSkipped(t *testing.T) {
	page := `<html><body><div class="page-wrapper">
		<section class="pricing"><h2>Plans start at $9 per month for everyone</h2></section>
	</div></body></html>`

	components := Extract(page)
	require.Len(t, components, 1)
	assert.Equal(t, TypePricing, components[0].Type)
	assert.NotContains(t, components[0].HTML, "page-wrapper")
}

func TestTinyElementsSkipped(t *testing.T) {
	page := `<html><body><section>tiny</section></body></html>`

	assert.Empty(t, Extract(page))
}

func TestPerTypeNamingCounters(t *testing.T) {
	page := `<html><body>
		<section class="hero-main"><h1>First hero with plenty of copy</h1></section>
		<section class="hero-alt"><h1>Second hero with plenty of copy</h1></section>
		<footer><p>Footer text long enough to matter.</p></footer>
	</body></html>`

	components := Extract(page)
	require.Len(t, components, 3)

	var heroNames []string
	for _, c := range components {
		if c.Type == TypeHero {
			heroNames = append(heroNames, c.Name)
		}
	}
	assert.Equal(t, []string{"Hero Section 1", "Hero Section 2"}, heroNames)
}

func TestClassPatternFallbackPass(t *testing.T) {
	// A bare div under body matches no pass-1 selector, so only the
	// class pattern can claim it.
	page := `<html><body><div class="testimonial-grid">
		<p>What our customers say about the product, at length.</p>
	</div></body></html>`

	components := Extract(page)
	require.Len(t, components, 1)
	assert.Equal(t, TypeTestimonials, components[0].Type)
}

func TestUnmatchedClassIgnoredInFallback(t *testing.T) {
	page := `<html><body><div class="random-thing">
		<p>Some text that is clearly long enough to pass the size filter.</p>
	</div></body></html>`

	assert.Empty(t, Extract(page))
}

func TestDetectTypeByContent(t *testing.T) {
	page := `<html><body><main><section>
		<h2>Plans</h2><p>Starter is $9 per month, Pro is $29 per month.</p>
	</section></main></body></html>`

	components := Extract(page)
	require.Len(t, components, 1)
	assert.Equal(t, TypePricing, components[0].Type)
}

func TestDetectTypeByForm(t *testing.T) {
	page := `<html><body><main><section>
		<h2>Get in touch with our team today</h2>
		<form><input type="email" aria-label="Email"></form>
	</section></main></body></html>`

	components := Extract(page)
	require.Len(t, components, 1)
	assert.Equal(t, TypeForm, components[0].Type)
	assert.Contains(t, components[0].Description, "contains form")
}

func TestDescriptionSummary(t *testing.T) {
	page := `<html><body><section class="gallery">
		<h2>Our best work, collected</h2>
		<img src="a.jpg" alt="a"><img src="b.jpg" alt="b">
		<a href="/more">See the full portfolio</a>
	</section></body></html>`

	components := Extract(page)
	require.Len(t, components, 1)

	desc := components[0].Description
	assert.Contains(t, desc, "section")
	assert.Contains(t, desc, "2 images")
	assert.Contains(t, desc, "1 links")
	assert.Contains(t, desc, "characters of text")
	assert.Contains(t, desc, " | ")
}

func TestExtractDeterministicApartFromIDs(t *testing.T) {
	page := `<html><body>
		<header><h1>Site Name</h1><p>Tagline goes here</p></header>
		<section class="hero"><h1>Hero copy that is long enough</h1></section>
	</body></html>`

	first := Extract(page)
	second := Extract(page)
	require.Equal(t, len(first), len(second))

	for i := range first {
		a, b := first[i], second[i]
		a.ID, b.ID = "", ""
		assert.Equal(t, a, b)
	}
}

func TestExtractMalformedInput(t *testing.T) {
	inputs := []string{
		"<section><div>unclosed",
		"<<<not html>>>",
		"<body><section class='hero'>Short</section>",
	}
	for _, input := range inputs {
		assert.NotPanics(t, func() { Extract(input) })
	}
}
