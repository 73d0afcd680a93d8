package sequence

import (
	"fmt"
	"strconv"
	"strings"

	"medreg/internal/core/apperror"
)

// separator joins identifier fields. Parsing splits on it and takes the last
// field, so no other field may ever contain it.
const separator = "-"

// Format renders an identifier string: PREFIX-DATE[-SUBSCOPE]-SEQ with the
// sequence zero-padded to width digits.
//
// Invalid inputs indicate a caller bug and fail fast: empty prefix, a
// separator inside prefix or subscope, non-positive width, negative sequence,
// or a sequence that does not fit the width (never silently truncated).
func Format(prefix, dateStamp, subscope string, seq int64, width int) (string, error) {
	if prefix == "" {
		return "", apperror.NewValidation("sequence prefix is required")
	}
	if strings.Contains(prefix, separator) {
		return "", apperror.NewValidation("sequence prefix must not contain separator").
			WithDetail("prefix", prefix)
	}
	if strings.Contains(subscope, separator) {
		return "", apperror.NewValidation("sequence subscope must not contain separator").
			WithDetail("subscope", subscope)
	}
	if dateStamp == "" {
		return "", apperror.NewValidation("sequence date stamp is required")
	}
	if width <= 0 {
		return "", apperror.NewValidation("sequence width must be positive").
			WithDetail("width", width)
	}
	if seq < 0 {
		return "", apperror.NewValidation("sequence number must not be negative").
			WithDetail("seq", seq)
	}
	if seq >= pow10(width) {
		return "", apperror.NewValidation("sequence number exceeds field width").
			WithDetail("seq", seq).
			WithDetail("width", width)
	}

	if subscope != "" {
		return fmt.Sprintf("%s%s%s%s%s%s%0*d",
			prefix, separator, dateStamp, separator, subscope, separator, width, seq), nil
	}
	return fmt.Sprintf("%s%s%s%s%0*d",
		prefix, separator, dateStamp, separator, width, seq), nil
}

// ParseSequence extracts the numeric sequence from a formatted identifier.
// The sequence is always the final separator-delimited field.
func ParseSequence(formatted string) (int64, error) {
	parts := strings.Split(formatted, separator)
	if len(parts) < 3 {
		return 0, apperror.NewValidation("malformed identifier").
			WithDetail("identifier", formatted)
	}

	last := parts[len(parts)-1]
	seq, err := strconv.ParseInt(last, 10, 64)
	if err != nil || last == "" {
		return 0, apperror.NewValidation("identifier has non-numeric sequence field").
			WithDetail("identifier", formatted)
	}

	return seq, nil
}

func pow10(width int) int64 {
	n := int64(1)
	for i := 0; i < width; i++ {
		n *= 10
	}
	return n
}
