package model

import (
	"regexp"
	"strings"
)

var formTypePattern = regexp.MustCompile(`^([A-Za-z]+)-?(\d+)$`)

var formIDPattern = regexp.MustCompile(`^\d+$`)

// FormType is a parsed form type such as `ACCESS-12`.
type FormType struct {
	Raw    string
	Prefix string
	// Number is the numeric form id without leading zeros; it keys the IT review chain.
	Number string
}

// ParseFormType validates raw against `<letters>[-]<digits>`.
func ParseFormType(raw string) (FormType, bool) {
	raw = strings.TrimSpace(raw)
	m := formTypePattern.FindStringSubmatch(raw)
	if m == nil {
		return FormType{}, false
	}
	return FormType{
		Raw:    strings.ToUpper(raw),
		Prefix: strings.ToUpper(m[1]),
		Number: NormalizeFormID(m[2]),
	}, true
}

// IDPrefix is the prefix used when generating request ids.
func (f FormType) IDPrefix() string {
	return f.Prefix + f.Number
}

// ValidFormID reports whether id is a bare numeric form id.
func ValidFormID(id string) bool {
	return formIDPattern.MatchString(strings.TrimSpace(id))
}

// NormalizeFormID strips whitespace and leading zeros; "000" becomes "0".
func NormalizeFormID(id string) string {
	id = strings.TrimLeft(strings.TrimSpace(id), "0")
	if id == "" {
		return "0"
	}
	return id
}

// NormalizeEmail trims and lower-cases an address for comparison and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
