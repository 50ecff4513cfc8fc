package entity

type Resume struct {
	ID        string  `json:"filename"`
	Path      string  `json:"path"`
	Text      string  `json:"text"`
	WordCount int     `json:"word_count"`
	SizeKB    float64 `json:"size_kb"`
}

type ResumeMatch struct {
	ResumeID   string
	Score      int
	Confidence float64
	Reasoning  string
}
