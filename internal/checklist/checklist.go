// Package checklist derives the per-category document checklist of an application.
package checklist

import "visa-advisory-portal/internal/model"

type Status string

const (
	StatusNone     Status = "none"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// rank orders statuses by urgency: a rejection is never masked by an older approval.
func rank(s Status) int {
	switch s {
	case StatusRejected:
		return 3
	case StatusPending:
		return 2
	case StatusApproved:
		return 1
	default:
		return 0
	}
}

func fromDocument(s model.DocumentStatus) Status {
	switch s {
	case model.DocumentRejected:
		return StatusRejected
	case model.DocumentApproved:
		return StatusApproved
	default:
		return StatusPending
	}
}

type Checklist struct {
	Categories       []string
	StatusByCategory map[string]Status
	ByCategory       map[string][]model.Document
	Available        []string
	Completed        int
	Progress         int
}

// Reconcile maps categories and documents to a checklist. It is pure: documents whose
// category is unknown are ignored and repeated category names count once.
func Reconcile(categories []string, documents []model.Document) Checklist {
	c := Checklist{
		Categories:       make([]string, 0, len(categories)),
		StatusByCategory: make(map[string]Status, len(categories)),
		ByCategory:       make(map[string][]model.Document, len(categories)),
		Available:        []string{},
	}

	for _, name := range categories {
		if _, seen := c.StatusByCategory[name]; seen {
			continue
		}
		c.Categories = append(c.Categories, name)
		c.StatusByCategory[name] = StatusNone
	}

	for _, doc := range documents {
		current, known := c.StatusByCategory[doc.Category]
		if !known {
			continue
		}
		c.ByCategory[doc.Category] = append(c.ByCategory[doc.Category], doc)
		if s := fromDocument(doc.Status); rank(s) > rank(current) {
			c.StatusByCategory[doc.Category] = s
		}
	}

	for _, name := range c.Categories {
		if c.StatusByCategory[name] == StatusNone {
			c.Available = append(c.Available, name)
		} else {
			c.Completed++
		}
	}
	c.Progress = Percent(c.Completed, len(c.Categories))

	return c
}

// Status returns StatusNone for categories outside the checklist.
func (c Checklist) Status(category string) Status {
	if s, ok := c.StatusByCategory[category]; ok {
		return s
	}
	return StatusNone
}

func (c Checklist) IsAvailable(category string) bool {
	_, known := c.StatusByCategory[category]
	return known && c.Status(category) == StatusNone
}

// Resubmittable lists categories whose aggregate status is rejected, in checklist order.
func (c Checklist) Resubmittable() []string {
	out := []string{}
	for _, name := range c.Categories {
		if c.StatusByCategory[name] == StatusRejected {
			out = append(out, name)
		}
	}
	return out
}

// Percent rounds 100*completed/total half up and returns 0 for an empty checklist.
func Percent(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return (200*completed + total) / (2 * total)
}
