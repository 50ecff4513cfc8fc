package entity

// FieldBinding maps a normalized label key to a literal answer.
type FieldBinding struct {
	Key   string
	Value string
}

// QuestionAnswer maps a normalized question fragment to the radio option to pick.
type QuestionAnswer struct {
	Question string
	Answer   string
}

// DropdownRule maps a label keyword to the option text to select.
type DropdownRule struct {
	Keyword string
	Value   string
}

// AnswerSet содержит всё, чем заполняются формы; во время прогона только читается.
type AnswerSet struct {
	Bindings  []FieldBinding
	Answers   []QuestionAnswer
	Dropdowns []DropdownRule
}

func DefaultDropdownRules() []DropdownRule {
	return []DropdownRule{
		{Keyword: "english", Value: "Professional working proficiency"},
		{Keyword: "proficiency", Value: "Professional working proficiency"},
		{Keyword: "degree", Value: "No"},
		{Keyword: "bachelor", Value: "No"},
		{Keyword: "master", Value: "No"},
		{Keyword: "education", Value: "No"},
		{Keyword: "time zone", Value: "No"},
		{Keyword: "us time", Value: "No"},
		{Keyword: "experience", Value: "2"},
		{Keyword: "years", Value: "2"},
	}
}
