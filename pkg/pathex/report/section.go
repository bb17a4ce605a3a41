package report

import "strings"

// BodySection is the subspecialty reading section a report belongs to.
// Spreadsheet file names carry the section name.
type BodySection string

const (
	Body    BodySection = "Body"
	Cardiac BodySection = "Cardiac"
	Chest   BodySection = "Chest"
	Mammo   BodySection = "Mammo"
	MSK     BodySection = "MSK"
	Neuro   BodySection = "Neuro"
	NucMed  BodySection = "Nuc Med"
	PET     BodySection = "PET"
	PEDS    BodySection = "PEDS"
)

// AllBodySections lists the sections in export order.
func AllBodySections() []BodySection {
	return []BodySection{Body, Cardiac, Chest, Mammo, MSK, Neuro, NucMed, PET, PEDS}
}

// SectionOf returns the first body section named in text, or "".
func SectionOf(text string) BodySection {
	lower := strings.ToLower(text)
	for _, s := range AllBodySections() {
		if strings.Contains(lower, strings.ToLower(string(s))) {
			return s
		}
	}
	return ""
}

// ParseBodySection resolves a section by case-insensitive name.
func ParseBodySection(name string) (BodySection, bool) {
	for _, s := range AllBodySections() {
		if strings.EqualFold(string(s), strings.TrimSpace(name)) {
			return s, true
		}
	}
	return "", false
}
