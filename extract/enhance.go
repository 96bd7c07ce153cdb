package extract

import "strings"

// Reference keyword tables for context annotation. A question is only
// flagged when it references the element explicitly AND the document
// actually contains one.
var (
	tableKeywords = []string{
		"table", "trial balance", "balance sheet", "given below",
		"following data", "from the", "using the data",
	}

	imageKeywords = []string{
		"figure", "diagram", "chart", "graph", "image",
		"picture", "illustration", "shown",
	}
)

// Annotate computes the context flags for one question against the
// document-level inventories. The scenario flag is document-wide: the
// presence of any scenario marks every question scenario-eligible for
// chunk assembly.
func Annotate(q Question, d *Document) Annotation {
	lower := strings.ToLower(q.Text)

	var a Annotation
	if containsAny(lower, tableKeywords) && len(d.Tables()) > 0 {
		a.HasTable = true
	}
	if containsAny(lower, imageKeywords) && len(d.Images()) > 0 {
		a.HasImage = true
	}
	if len(d.Scenarios) > 0 {
		a.HasScenario = true
	}
	return a
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
