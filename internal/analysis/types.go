package analysis

// Request is one analysis job: the work's original passage and the
// lecturer's commentary on it.
type Request struct {
	OriginalText  string
	LectureScript string

	// TargetSequenceCount asks the model for roughly this many sequences.
	// Zero or less leaves the partitioning to the model.
	TargetSequenceCount int
}

// Result is the parsed model reply.
type Result struct {
	Metadata   Metadata    `json:"metadata"`
	BreakPoint *BreakPoint `json:"structure_break_point,omitempty"`
	Sequences  []Sequence  `json:"sequences"`
}

// Metadata describes the analysed work.
type Metadata struct {
	Title string `json:"title,omitempty"`
}

// BreakPoint marks an elided passage between two sequences.
type BreakPoint struct {
	AfterSequence int         `json:"after_sequence"`
	Description   string      `json:"description"`
	ChangeState   ChangeState `json:"change_state"`
}

// ChangeState is the situation on either side of a break point.
type ChangeState struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// Sequence is one narrative unit with its evidence.
type Sequence struct {
	SeqID        int      `json:"seq_id"`
	Summary      string   `json:"summary"`
	CoreMessage  string   `json:"core_message"`
	ThemeKeyword string   `json:"theme_keyword"`
	Details      []Detail `json:"details"`
}

// Detail pairs a piece of textual evidence with the lecturer's reading of it.
type Detail struct {
	Fact           string `json:"fact"`
	Interpretation string `json:"interpretation"`
}

// Title returns the work title, or fallback when the model gave none.
func (r *Result) Title(fallback string) string {
	if r.Metadata.Title != "" {
		return r.Metadata.Title
	}
	return fallback
}

// BreaksAfter reports whether the break point belongs right after seqID.
func (r *Result) BreaksAfter(seqID int) bool {
	return r.BreakPoint != nil && r.BreakPoint.AfterSequence == seqID
}
