package domain

import (
	"encoding/json"
	"fmt"
)

// Priority is the set of priority categories a case's marker falls into.
// Categories are not mutually exclusive.
type Priority uint8

const (
	// PriorityRed marks an escalated case.
	PriorityRed Priority = 1 << iota
	// PriorityYellow marks a case needing attention.
	PriorityYellow
)

// PriorityNone is the empty classification.
const PriorityNone Priority = 0

// Category labels as they appear in markers and in JSON.
const (
	LabelRed    = "red"
	LabelYellow = "yellow"
)

// Has reports whether p includes every category in other.
func (p Priority) Has(other Priority) bool {
	return other != PriorityNone && p&other == other
}

// Labels returns the category names contained in p.
func (p Priority) Labels() []string {
	labels := []string{}
	if p.Has(PriorityRed) {
		labels = append(labels, LabelRed)
	}
	if p.Has(PriorityYellow) {
		labels = append(labels, LabelYellow)
	}
	return labels
}

// MarshalJSON encodes the priority as a list of labels.
func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Labels())
}

// UnmarshalJSON decodes a list of labels.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil {
		return fmt.Errorf("decode priority: %w", err)
	}

	*p = PriorityNone
	for _, label := range labels {
		switch label {
		case LabelRed:
			*p |= PriorityRed
		case LabelYellow:
			*p |= PriorityYellow
		default:
			return fmt.Errorf("unknown priority label %q", label)
		}
	}

	return nil
}
