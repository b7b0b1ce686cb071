package checklist

import "visa-advisory-portal/internal/model"

// Summary counts documents by review status.
type Summary struct {
	Total    int
	Pending  int
	Approved int
	Rejected int
}

func Summarize(documents []model.Document) Summary {
	var s Summary
	for _, doc := range documents {
		s.Total++
		switch doc.Status {
		case model.DocumentApproved:
			s.Approved++
		case model.DocumentRejected:
			s.Rejected++
		default:
			s.Pending++
		}
	}
	return s
}

// Progress is the client record view of a checklist and its documents.
func Progress(categories []string, documents []model.Document) model.ClientProgress {
	c := Reconcile(categories, documents)
	s := Summarize(documents)
	return model.ClientProgress{
		Progress:         c.Progress,
		TotalDocuments:   s.Total,
		PendingDocuments: s.Pending,
	}
}
