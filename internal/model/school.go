package model

import (
	"strings"
	"time"
)

// Print-time defaults used when the caller supplies no school details.
const (
	DefaultExamType     = "Mid-Term Examination"
	DefaultAcademicYear = "2024-25"
	DefaultDuration     = "2 Hours"
	DefaultInstructions = "• Read all questions carefully before answering\n" +
		"• All questions are compulsory\n" +
		"• Write answers in the space provided\n" +
		"• Use blue or black ink only\n" +
		"• Check your answers before submitting"
)

// SchoolDetails configures the header of a printed paper.
type SchoolDetails struct {
	SchoolName   string `json:"school_name" binding:"max=200"`
	Address      string `json:"address" binding:"max=500"`
	ExamType     string `json:"exam_type" binding:"max=100"`
	AcademicYear string `json:"academic_year" binding:"max=20"`
	Date         string `json:"date" binding:"max=40"`
	Duration     string `json:"duration" binding:"max=40"`
	Instructions string `json:"instructions" binding:"max=4000"`
}

// InstructionLines splits the instructions on newlines, trims each line and
// drops the empty ones.
func (d SchoolDetails) InstructionLines() []string {
	var out []string
	for _, line := range strings.Split(d.Instructions, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Merge returns d with every empty field filled from fallback.
func (d SchoolDetails) Merge(fallback SchoolDetails) SchoolDetails {
	pick := func(v, def string) string {
		if strings.TrimSpace(v) == "" {
			return def
		}
		return v
	}
	return SchoolDetails{
		SchoolName:   pick(d.SchoolName, fallback.SchoolName),
		Address:      pick(d.Address, fallback.Address),
		ExamType:     pick(d.ExamType, fallback.ExamType),
		AcademicYear: pick(d.AcademicYear, fallback.AcademicYear),
		Date:         pick(d.Date, fallback.Date),
		Duration:     pick(d.Duration, fallback.Duration),
		Instructions: pick(d.Instructions, fallback.Instructions),
	}
}

// PrintDate formats t the way Indian locales write dates (dd/mm/yyyy).
func PrintDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// DefaultSchoolDetails builds print defaults for the given school.
func DefaultSchoolDetails(school *SchoolData, now time.Time) SchoolDetails {
	d := SchoolDetails{
		ExamType:     DefaultExamType,
		AcademicYear: DefaultAcademicYear,
		Date:         PrintDate(now),
		Duration:     DefaultDuration,
		Instructions: DefaultInstructions,
	}
	if school != nil {
		d.SchoolName = school.SchoolName
		d.Address = school.Address
	}
	return d
}
