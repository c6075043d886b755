package domain

// QualityReport scores one extraction pass. All three scores are percentages
// in [0,100]. The report never lives apart from its document.
type QualityReport struct {
	Completeness int      `json:"completeness"`
	Accuracy     int      `json:"accuracy"`
	Consistency  int      `json:"consistency"`
	Warnings     []string `json:"warnings"`
}

func (q QualityReport) Clean() bool {
	return len(q.Warnings) == 0
}
