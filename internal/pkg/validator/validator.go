package validator

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		if _, exists := result[err.Field]; !exists {
			result[err.Field] = err.Message
		}
	}
	return result
}

// Field returns the first message recorded for field, or "".
func (v ValidationErrors) Field(field string) string {
	for _, err := range v {
		if err.Field == field {
			return err.Message
		}
	}
	return ""
}

// Messages returns every message recorded for field.
func (v ValidationErrors) Messages(field string) []string {
	var msgs []string
	for _, err := range v {
		if err.Field == field {
			msgs = append(msgs, err.Message)
		}
	}
	return msgs
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Email validation
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// UUIDv7 regex: version 7 (the 15th character must be '7'), all lowercase hex digits.
var uuidv7Regex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// UUIDv7 validation
func IsValidUUID(uuid string) bool {
	return uuidv7Regex.MatchString(strings.ToLower(uuid))
}

// Numeric validation
var numericRegex = regexp.MustCompile(`^[0-9]+$`)

func IsNumeric(s string) bool {
	return numericRegex.MatchString(s)
}

// ParseInt parses a base-10 integer after trimming whitespace.
// Signs are accepted so callers can tell "not a number" from "negative".
func ParseInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return n, err == nil
}

// MaxStoredInt is the largest value an INTEGER column holds.
const MaxStoredInt = math.MaxInt32

// ParseNonNegativeInt treats blank input as 0.
func ParseNonNegativeInt(s string) (int, bool) {
	if IsEmpty(s) {
		return 0, true
	}
	n, ok := ParseInt(s)
	if !ok || n < 0 {
		return 0, false
	}
	return n, true
}

// ParseStoredInt is ParseNonNegativeInt capped at MaxStoredInt.
// tooLarge separates an out-of-range number from a malformed one.
func ParseStoredInt(s string) (n int, ok bool, tooLarge bool) {
	n, ok = ParseNonNegativeInt(s)
	if ok && n > MaxStoredInt {
		return 0, false, true
	}
	return n, ok, false
}

// RuneLen counts characters rather than bytes, matching VARCHAR(n).
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

// IsValidMonth accepts "YYYY-MM" and returns the first day of that month.
func IsValidMonth(monthStr string) (time.Time, bool) {
	month, err := time.Parse("2006-01", monthStr)
	return month, err == nil
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

// Codes: 1-50 chars, letters, digits, _ and -
var codeRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,50}$`)

func IsValidCode(code string) bool {
	return codeRegex.MatchString(code)
}

var slugStripRegex = regexp.MustCompile(`[^a-z0-9_-]+`)
var slugDashRegex = regexp.MustCompile(`[-\s]+`)

// Slugify lower-cases s, drops anything outside [a-z0-9_-] and collapses
// whitespace and dashes into a single dash.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugDashRegex.ReplaceAllString(s, "-")
	s = slugStripRegex.ReplaceAllString(s, "")
	return strings.Trim(s, "-_")
}

// Itoa converts an integer to a string.
func Itoa(i int) string {
	return strconv.Itoa(i)
}
