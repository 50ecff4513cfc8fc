package entity

type WizardState int

const (
	StateSearching WizardState = iota
	StateButtonFound
	StateModalOpen
	StateFilling
	StateCheckingSubmit
	StateCheckingNext
	StateCheckingReview
	StateStuck
	StateTerminal
)

func (s WizardState) String() string {
	switch s {
	case StateSearching:
		return "searching"
	case StateButtonFound:
		return "button_found"
	case StateModalOpen:
		return "modal_open"
	case StateFilling:
		return "filling"
	case StateCheckingSubmit:
		return "checking_submit"
	case StateCheckingNext:
		return "checking_next"
	case StateCheckingReview:
		return "checking_review"
	case StateStuck:
		return "stuck"
	case StateTerminal:
		return "terminal"
	}
	return "unknown"
}

type Affordance string

const (
	AffordanceNone   Affordance = "none"
	AffordanceSubmit Affordance = "submit"
	AffordanceNext   Affordance = "next"
	AffordanceReview Affordance = "review"
)

// WizardStep описывает одну итерацию цикла формы; не сохраняется.
type WizardStep struct {
	Index       int
	TextInputs  int
	RadioGroups int
	Dropdowns   int
	Uploaded    bool
	Affordance  Affordance
}

// ButtonInfo describes a visible button for stuck diagnostics.
type ButtonInfo struct {
	Index int
	Label string
}
