package extractor

// ComponentType classifies an extracted page section.
type ComponentType string

const (
	TypeHeader       ComponentType = "header"
	TypeHero         ComponentType = "hero"
	TypeFeatures     ComponentType = "features"
	TypePricing      ComponentType = "pricing"
	TypeTestimonials ComponentType = "testimonials"
	TypeFooter       ComponentType = "footer"
	TypeCTA          ComponentType = "cta"
	TypeNav          ComponentType = "nav"
	TypeForm         ComponentType = "form"
	TypeGallery      ComponentType = "gallery"
	TypeOther        ComponentType = "other"
)

// typeLabels are the human-readable display names used for component naming.
var typeLabels = map[ComponentType]string{
	TypeHeader:       "Header",
	TypeHero:         "Hero Section",
	TypeFeatures:     "Features Section",
	TypePricing:      "Pricing Section",
	TypeTestimonials: "Testimonials Section",
	TypeFooter:       "Footer",
	TypeCTA:          "CTA Section",
	TypeNav:          "Navigation",
	TypeForm:         "Form Section",
	TypeGallery:      "Gallery Section",
	TypeOther:        "Component",
}

// ExtractedComponent is an immutable snapshot of one page section:
// its serialized markup plus the stylesheet rules relevant to it.
type ExtractedComponent struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	HTML        string        `json:"html"`
	CSS         string        `json:"css"`
	Type        ComponentType `json:"type"`
	Description string        `json:"description"`
}
