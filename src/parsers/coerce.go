// backend/src/parsers/coerce.go
package parsers

import (
	"math"
	"strconv"
	"strings"
)

// Field coercion primitives shared by both decode schemas. Each one maps a
// raw CSV cell to a pointer, nil meaning the field is absent; "absent",
// "empty" and "zero" must stay distinguishable all the way into the model.

func coerceText(cell string) *string {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func coerceBool(cell string) *bool {
	v := true
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "true", "1", "yes":
	case "false", "0", "no":
		v = false
	default:
		return nil
	}
	return &v
}

// coerceNumber accepts currency-formatted cells: "$1,234.50" parses as
// 1234.5 and accountant-style "(123.45)" as -123.45.
func coerceNumber(cell string) *float64 {
	s := strings.TrimSpace(cell)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	if negative {
		v = -v
	}
	return &v
}

func coerceList(cell string) []string {
	var items []string
	for _, item := range strings.Split(cell, ";") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// coerceDirection recognizes the journal's own long/short vocabulary.
func coerceDirection(cell string) *string {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "long":
		d := "long"
		return &d
	case "short":
		d := "short"
		return &d
	}
	return nil
}

// coerceSide recognizes broker-statement side vocabulary and maps it onto
// the journal's direction enum.
func coerceSide(cell string) *string {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "buy", "long":
		d := "long"
		return &d
	case "sell", "short":
		d := "short"
		return &d
	}
	return nil
}
