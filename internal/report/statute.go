package report

import (
	"strings"

	"github.com/jonesrussell/north-cloud/case-tracker/internal/domain"
)

// sectionLabelSeparator joins a section number and its content in labels.
const sectionLabelSeparator = " - "

// SectionOption is a selectable statute section.
type SectionOption struct {
	Number  string `json:"section_number"`
	Content string `json:"section_content"`
}

// Label renders the option as "<number> - <content>".
func (o SectionOption) Label() string {
	return o.Number + sectionLabelSeparator + o.Content
}

// LookupSection returns the first entry whose section number equals section,
// both compared as trimmed strings. A miss returns a blank entry.
func LookupSection(entries []domain.StatuteEntry, section string) domain.StatuteEntry {
	want := strings.TrimSpace(section)
	if want == "" {
		return domain.StatuteEntry{}
	}

	for _, e := range entries {
		if strings.TrimSpace(e.SectionNumber) == want {
			return e
		}
	}

	return domain.StatuteEntry{}
}

// Chapters returns the distinct chapter names in first-seen order.
func Chapters(entries []domain.StatuteEntry) []string {
	return distinct(entries, func(e *domain.StatuteEntry) string { return e.ChapterName })
}

// SubChapters returns the distinct non-blank sub-chapters of chapter.
func SubChapters(entries []domain.StatuteEntry, chapter string) []string {
	return distinct(entries, func(e *domain.StatuteEntry) string {
		if e.ChapterName != chapter {
			return ""
		}
		return strings.TrimSpace(e.SubChapter)
	})
}

// HasSubChapters reports whether any row of chapter names a sub-chapter.
func HasSubChapters(entries []domain.StatuteEntry, chapter string) bool {
	for _, e := range entries {
		if e.ChapterName == chapter && strings.TrimSpace(e.SubChapter) != "" {
			return true
		}
	}
	return false
}

// SectionsFor returns the distinct sections of chapter, and of subChapter when
// the chapter has sub-chapters. For chapters without sub-chapters the
// sub-chapter filter is ignored.
func SectionsFor(entries []domain.StatuteEntry, chapter, subChapter string) []SectionOption {
	filterSub := HasSubChapters(entries, chapter)
	subChapter = strings.TrimSpace(subChapter)

	seen := make(map[string]bool)
	options := []SectionOption{}

	for _, e := range entries {
		if e.ChapterName != chapter {
			continue
		}
		if filterSub && strings.TrimSpace(e.SubChapter) != subChapter {
			continue
		}

		number := strings.TrimSpace(e.SectionNumber)
		if number == "" || seen[number] {
			continue
		}
		seen[number] = true
		options = append(options, SectionOption{Number: number, Content: e.SectionContent})
	}

	return options
}

func distinct(entries []domain.StatuteEntry, key func(*domain.StatuteEntry) string) []string {
	seen := make(map[string]bool)
	values := []string{}

	for i := range entries {
		v := key(&entries[i])
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}

	return values
}
