// Package marker classifies free-text case markers into priority categories.
package marker

import (
	"strings"
	"sync"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/domain"
	"golang.org/x/text/cases"
)

// Default keywords matched inside a case-folded marker.
var (
	DefaultRedKeywords    = []string{domain.LabelRed}
	DefaultYellowKeywords = []string{domain.LabelYellow}
)

// Classifier matches marker text against keyword lists in a single pass.
// A marker is in a category when any of its keywords occurs as a substring,
// ignoring case. Safe for concurrent use.
type Classifier struct {
	mu         sync.Mutex // the matcher and folder keep per-call state
	matcher    *ahocorasick.Matcher
	folder     cases.Caser
	categories []domain.Priority
}

// New builds a classifier. Blank keywords are ignored; nil lists fall back to
// the defaults.
func New(redKeywords, yellowKeywords []string) *Classifier {
	if redKeywords == nil {
		redKeywords = DefaultRedKeywords
	}
	if yellowKeywords == nil {
		yellowKeywords = DefaultYellowKeywords
	}

	folder := cases.Fold()
	keywords := make([]string, 0, len(redKeywords)+len(yellowKeywords))
	categories := make([]domain.Priority, 0, cap(keywords))

	add := func(list []string, category domain.Priority) {
		for _, kw := range list {
			normalized := folder.String(strings.TrimSpace(kw))
			if normalized == "" {
				continue
			}
			keywords = append(keywords, normalized)
			categories = append(categories, category)
		}
	}
	add(redKeywords, domain.PriorityRed)
	add(yellowKeywords, domain.PriorityYellow)

	c := &Classifier{folder: folder, categories: categories}
	if len(keywords) > 0 {
		c.matcher = ahocorasick.NewStringMatcher(keywords)
	}

	return c
}

// NewDefault builds a classifier for the "red" and "yellow" keywords.
func NewDefault() *Classifier {
	return New(nil, nil)
}

// Classify returns the categories the marker falls into.
func (c *Classifier) Classify(marker string) domain.Priority {
	if c.matcher == nil || marker == "" {
		return domain.PriorityNone
	}

	c.mu.Lock()
	hits := c.matcher.Match([]byte(c.folder.String(marker)))
	c.mu.Unlock()

	var p domain.Priority
	for _, hit := range hits {
		if hit < len(c.categories) {
			p |= c.categories[hit]
		}
	}

	return p
}

// Apply sets Priority on every case from its marker, in place.
func (c *Classifier) Apply(cs []domain.CaseRecord) {
	for i := range cs {
		cs[i].Priority = c.Classify(cs[i].Marker)
	}
}
