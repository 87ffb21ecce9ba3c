// Package ident contains the sequential identifier rules shared by every table.
// This is part of the Functional Core - no I/O, only pure functions.
package ident

import (
	"fmt"
	"strconv"
	"strings"
)

// Next returns the identifier that follows currentMax.
// Empty tables report a max of 0, so the first identifier is 1.
func Next(currentMax int64) int64 {
	if currentMax < 0 {
		currentMax = 0
	}
	return currentMax + 1
}

// Parse reads an identifier cell. Blank cells parse as 0 so that a table
// with a damaged id column never lowers the running max.
func Parse(cell string) (int64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(cell, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", cell, err)
	}
	return id, nil
}

// Format renders an identifier the way it is stored in a table cell.
func Format(id int64) string {
	return strconv.FormatInt(id, 10)
}
