package layout

import (
	"strings"
	"testing"
)

func TestWouldOverflow(t *testing.T) {
	tests := []struct {
		y, req float64
		want   bool
	}{
		{20, 100, false},
		{200, 77, false},
		{200, 77.1, true},
		{277, 0, false},
		{270, 10, true},
	}
	for _, tt := range tests {
		if got := WouldOverflow(tt.y, tt.req, 297, 20); got != tt.want {
			t.Errorf("WouldOverflow(%v, %v) = %v, want %v", tt.y, tt.req, got, tt.want)
		}
	}
}

func TestCursorEnsure(t *testing.T) {
	c := NewCursor(A4)
	if c.Y() != 20 || c.Page() != 1 {
		t.Fatalf("start = (%v, %d)", c.Y(), c.Page())
	}

	c.Advance(250)
	if c.Ensure(5) {
		t.Error("5mm fits at y=270")
	}
	if !c.Ensure(10) {
		t.Fatal("10mm at y=270 should break")
	}
	if c.Y() != 20 || c.Page() != 2 {
		t.Errorf("after break = (%v, %d)", c.Y(), c.Page())
	}
}

func TestCursorOversizedFragmentBreaksOnce(t *testing.T) {
	c := NewCursor(A4)
	c.Advance(100)
	if !c.Ensure(500) {
		t.Fatal("expected a break")
	}
	if c.Ensure(500) {
		t.Error("a fresh page must not break again")
	}
	if c.Page() != 2 {
		t.Errorf("page = %d", c.Page())
	}
}

func TestCursorAdvanceIsMonotonic(t *testing.T) {
	c := NewCursor(A4)
	c.Advance(10)
	c.Advance(-5)
	if c.Y() != 30 {
		t.Errorf("y = %v", c.Y())
	}
}

func TestGeometry(t *testing.T) {
	if A4.ContentWidth() != 170 {
		t.Errorf("content width = %v", A4.ContentWidth())
	}
	if A4.UsableHeight() != 257 {
		t.Errorf("usable height = %v", A4.UsableHeight())
	}
}

func TestMonospaceSplitter(t *testing.T) {
	s := MonospaceSplitter{}
	lines := s.SplitLines("the quick brown fox jumps over the lazy dog", StyleQuestion, 10)
	for _, l := range lines {
		if len(l) > 10 {
			t.Errorf("line %q exceeds 10 columns", l)
		}
	}
	if got := strings.Join(lines, " "); got != "the quick brown fox jumps over the lazy dog" {
		t.Errorf("rejoined = %q", got)
	}

	long := s.SplitLines(strings.Repeat("x", 25), StyleQuestion, 10)
	if len(long) != 3 {
		t.Errorf("hard break lines = %q", long)
	}

	if got := s.SplitLines("", StyleQuestion, 10); len(got) != 1 {
		t.Errorf("empty text lines = %q", got)
	}
}

func TestMonospaceSplitterCharWidth(t *testing.T) {
	s := MonospaceSplitter{CharWidth: 2}
	if s.Columns(170) != 85 {
		t.Errorf("columns = %d", s.Columns(170))
	}
	if s.Columns(0.5) != 1 {
		t.Errorf("columns floor = %d", s.Columns(0.5))
	}
}

func TestFragmentHeights(t *testing.T) {
	if QuestionHeight(2) != 30 {
		t.Errorf("QuestionHeight(2) = %v", QuestionHeight(2))
	}
	if OptionHeight(2) != 12 {
		t.Errorf("OptionHeight(2) = %v", OptionHeight(2))
	}
	if AnswerHeight(1) != 16 {
		t.Errorf("AnswerHeight(1) = %v", AnswerHeight(1))
	}
	if InstructionsBoxHeight(5) != 40 {
		t.Errorf("InstructionsBoxHeight(5) = %v", InstructionsBoxHeight(5))
	}
	if HeaderHeight() != 58 {
		t.Errorf("HeaderHeight = %v", HeaderHeight())
	}
}

func TestPlanPageItems(t *testing.T) {
	p := Plan{Items: []Item{{Page: 1, Text: "a"}, {Page: 2, Text: "b"}, {Page: 1, Text: "c"}}}
	got := p.PageItems(1)
	if len(got) != 2 || got[0].Text != "a" || got[1].Text != "c" {
		t.Errorf("page 1 items = %+v", got)
	}
}
