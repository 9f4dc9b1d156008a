package scheduling

import (
	"fmt"
	"strings"
)

const (
	markerVisitType = "Visit Type:"
	markerTests     = "Tests:"
	markerMedicines = "Medicines:"
)

// VisitNotes are the structured fields packed into Treatment.Notes.
type VisitNotes struct {
	VisitType string `json:"visitType"`
	TestsDone string `json:"testsDone"`
	Medicines string `json:"medicines"`
}

// EncodeNotes substitutes the fields verbatim. A field that itself contains
// "Tests:" or "Medicines:" will not decode back to the same value.
func EncodeNotes(visitType, testsDone, medicines string) string {
	return fmt.Sprintf("%s %s, %s %s, %s %s",
		markerVisitType, visitType, markerTests, testsDone, markerMedicines, medicines)
}

// DecodeNotes extracts the fields written by EncodeNotes. It never fails;
// a missing marker decodes to an empty field.
func DecodeNotes(text string) VisitNotes {
	cleaned := strings.ReplaceAll(text, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "  ", " ")

	return VisitNotes{
		VisitType: cleanField(between(cleaned, markerVisitType, markerTests)),
		TestsDone: cleanField(between(cleaned, markerTests, markerMedicines)),
		Medicines: cleanField(between(cleaned, markerMedicines, "")),
	}
}

// DecodeNotesPtr decodes a nullable notes column.
func DecodeNotesPtr(text *string) VisitNotes {
	if text == nil {
		return VisitNotes{}
	}
	return DecodeNotes(*text)
}

// between returns the text that follows the first start marker, stopping
// at a repeated start marker and then at the first end marker. An empty end
// reads to the end of the text.
func between(text, start, end string) string {
	_, after, found := strings.Cut(text, start)
	if !found {
		return ""
	}
	after, _, _ = strings.Cut(after, start)
	if end != "" {
		after, _, _ = strings.Cut(after, end)
	}
	return after
}

// cleanField trims whitespace and one trailing comma.
func cleanField(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ",")
	return strings.TrimSpace(s)
}
