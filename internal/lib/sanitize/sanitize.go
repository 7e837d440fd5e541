// Package sanitize coerces untrusted form and query values into safe scalars.
package sanitize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	tagPattern     = regexp.MustCompile(`<[^>]*>?`)
	octetPattern   = regexp.MustCompile(`%[a-fA-F0-9]{2}`)
	spacePattern   = regexp.MustCompile(`[\r\n\t ]+`)
	numericPattern = regexp.MustCompile(`^[0-9]+$`)
)

// Text strips markup, percent-encoded octets, invalid UTF-8 and line
// breaks, then collapses whitespace.
func Text(value string) string {
	if !utf8.ValidString(value) {
		value = strings.ToValidUTF8(value, "")
	}
	value = tagPattern.ReplaceAllString(value, "")
	value = octetPattern.ReplaceAllString(value, "")
	value = spacePattern.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

// Bool follows the form-boolean convention: "false", "0", "off", "no" and
// empty strings are false, any other string is true.
func Bool(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case json.Number:
		return Bool(string(v))
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "0", "false", "off", "no":
			return false
		}
		return true
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	default:
		return true
	}
}

// PositiveInt parses value as an integer greater than zero. Anything else
// yields def.
func PositiveInt(value interface{}, def int) int {
	var n int
	switch v := value.(type) {
	case int:
		n = v
	case int64:
		n = int(v)
	case json.Number:
		return PositiveInt(string(v), def)
	case float64:
		if v != float64(int(v)) {
			return def
		}
		n = int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return def
		}
		n = parsed
	default:
		return def
	}
	if n <= 0 {
		return def
	}
	return n
}

func IsNumeric(value string) bool {
	return numericPattern.MatchString(value)
}

// Key keeps lowercase alphanumerics, dashes and underscores.
func Key(value string) string {
	value = strings.ToLower(value)
	var b strings.Builder
	for _, r := range value {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// String renders scalar form values as text.
func String(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
