package model

// Determination is the eligibility oracle's verdict for one case.
// It is produced outside the deterministic core and never feeds back into it.
type Determination struct {
	Eligible    bool      `json:"eligible"`
	Confidence  int       `json:"confidence"` // 0-100
	KeyFindings []Finding `json:"key_findings"`
	NextSteps   []string  `json:"next_steps"`
}

// Finding is one reason the oracle gave for its verdict.
type Finding struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
