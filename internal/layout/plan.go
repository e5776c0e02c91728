package layout

// Style names the typographic role of a fragment. Backends map it to fonts.
type Style int

const (
	StyleSchoolName Style = iota
	StyleAddress
	StyleExamType
	StyleDetails
	StyleInstructionsTitle
	StyleInstruction
	StyleTitle
	StyleSection
	StyleQuestion
	StyleOption
	StyleOptionCorrect
	StyleAnswer
	StyleMarks
)

// Align is the horizontal anchoring of a text item.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
)

// ItemKind is what a placed item draws.
type ItemKind int

const (
	ItemText ItemKind = iota
	ItemRule
	ItemBox
)

// Item is one positioned drawing instruction. Text items are anchored at
// their baseline; rules span W at Y; boxes span W×H from (X, Y).
type Item struct {
	Kind  ItemKind
	Page  int
	X, Y  float64
	W, H  float64
	Text  string
	Style Style
	Align Align
}

// Plan is a fully paginated document.
type Plan struct {
	Geometry Geometry
	Pages    int
	Items    []Item
}

// PageItems returns the items placed on page n.
func (p *Plan) PageItems(n int) []Item {
	var out []Item
	for _, it := range p.Items {
		if it.Page == n {
			out = append(out, it)
		}
	}
	return out
}

// Fragment spacing, in millimetres on an A4 page.
const (
	LineHeight       = 5.0
	OptionLineHeight = 6.0

	SchoolNameAdvance = 8.0
	AddressAdvance    = 10.0
	ExamTypeAdvance   = 15.0
	DetailsAdvance    = 10.0
	RuleAdvance       = 5.0

	InstructionsBoxWidth   = 120.0
	InstructionsBoxPadding = 5.0
	InstructionsGap        = 12.0

	TitleHeight  = 15.0
	TitleAdvance = 12.0

	SectionHeadingHeight  = 12.0
	SectionHeadingAdvance = 10.0
	SectionGap            = 8.0

	QuestionPadding = 20.0
	QuestionGap     = 8.0

	AnswerGap     = 3.0
	MarksAdvance  = 8.0
	QuestionInset = 5.0
	AnswerInset   = 10.0
	OptionInset   = 15.0
)

// HeaderHeight is the height of the school header up to and including the
// first divider.
func HeaderHeight() float64 {
	return SchoolNameAdvance + AddressAdvance + ExamTypeAdvance + 2*DetailsAdvance + RuleAdvance
}

// InstructionsBoxHeight is the framed instructions box for n lines.
func InstructionsBoxHeight(n int) float64 {
	return float64(n)*LineHeight + 10 + InstructionsBoxPadding
}

// InstructionsHeight is the box plus the gap below it.
func InstructionsHeight(n int) float64 {
	return InstructionsBoxHeight(n) + InstructionsGap
}

// QuestionHeight is the space reserved before a question's text lines.
// The padding keeps a question from being stranded alone at a page foot.
func QuestionHeight(lines int) float64 {
	return float64(lines)*LineHeight + QuestionPadding
}

// OptionHeight is the height of one option wrapped to lines.
func OptionHeight(lines int) float64 {
	return float64(lines) * OptionLineHeight
}

// AnswerHeight is the answer text plus its marks line.
func AnswerHeight(lines int) float64 {
	return float64(lines)*LineHeight + AnswerGap + MarksAdvance
}
