package analysis

// Status is the three-way classification of a single criterion.
type Status string

const (
	StatusMatch   Status = "match"
	StatusPartial Status = "partial"
	StatusGap     Status = "gap"
)

// Match is one evaluated criterion in the result.
type Match struct {
	Item    string `json:"item"`
	Status  Status `json:"status"`
	Comment string `json:"comment,omitempty"`
}

// Company carries optional employer information extracted by the backend.
type Company struct {
	Name string `json:"name,omitempty"`
	Info string `json:"info,omitempty"`
}

// Details carries optional free-text detail fields.
type Details struct {
	Career string `json:"career,omitempty"`
	Stack  string `json:"stack,omitempty"`
	Team   string `json:"team,omitempty"`
}

// ProsCons carries optional pro/con lists.
type ProsCons struct {
	Pros []string `json:"pros,omitempty"`
	Cons []string `json:"cons,omitempty"`
}

// Recommendation carries the backend's decision and suggested actions.
type Recommendation struct {
	Decision string   `json:"decision,omitempty"`
	Actions  []string `json:"actions,omitempty"`
}

// Result is the structured analysis payload. Optional sections are pointer
// or slice typed so their absence is representable; rendering suppresses
// absent sections instead of showing empty placeholders. The result is
// transient: it is rendered, recorded in history and discarded.
//
// Proxy mode fills the richer fields (company, details, pros/cons,
// recommendation); direct mode fills the simpler quick-wins list. Score is
// nominally 1-10; ScoreRaw, when present, is the backend's 0-100 scale
// carried verbatim (normalization is backend-owned).
type Result struct {
	Score          float64         `json:"score"`
	ScoreRaw       float64         `json:"score_raw,omitempty"`
	Verdict        string          `json:"verdict,omitempty"`
	Matches        []Match         `json:"matches,omitempty"`
	Company        *Company        `json:"company,omitempty"`
	Details        *Details        `json:"details,omitempty"`
	ProsCons       *ProsCons       `json:"pros_cons,omitempty"`
	Recommendation *Recommendation `json:"recommendation,omitempty"`
	QuickWins      []string        `json:"quick_wins,omitempty"`
}
