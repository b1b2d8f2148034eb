package helper

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrBadPositionCode = errors.New("malformed position code")

// RowLetter maps a 0-based row index to its label: A..Z, then AA, AB, …
// (excel style) once a shelf grows past 26 rows.
func RowLetter(row int) string {
	if row < 0 {
		return ""
	}
	if row < 26 {
		return string(rune('A' + row))
	}
	first := row/26 - 1
	second := row % 26
	return string(rune('A'+first)) + string(rune('A'+second))
}

// RowIndex is the inverse of RowLetter.
func RowIndex(letters string) (int, error) {
	switch len(letters) {
	case 1:
		c := letters[0]
		if c < 'A' || c > 'Z' {
			return 0, ErrBadPositionCode
		}
		return int(c - 'A'), nil
	case 2:
		a, b := letters[0], letters[1]
		if a < 'A' || a > 'Z' || b < 'A' || b > 'Z' {
			return 0, ErrBadPositionCode
		}
		return (int(a-'A')+1)*26 + int(b-'A'), nil
	default:
		return 0, ErrBadPositionCode
	}
}

// PositionCode builds the canonical code for a cell, e.g. shelf "B",
// row 2, column 12 -> "B-C12". Row is 0-based, column is 1-based.
// Codes are unique within a shelf and only change when the shelf letter
// changes, in which case every code on the shelf is regenerated.
func PositionCode(shelfLetter string, row, column int) string {
	return fmt.Sprintf("%s-%s%d", shelfLetter, RowLetter(row), column)
}

// ParsePositionCode round-trips exactly for any code produced by
// PositionCode.
func ParsePositionCode(code string) (shelfLetter string, row int, column int, err error) {
	parts := strings.SplitN(code, "-", 2)
	if len(parts) != 2 || len(parts[0]) != 1 {
		return "", 0, 0, ErrBadPositionCode
	}
	if parts[0][0] < 'A' || parts[0][0] > 'Z' {
		return "", 0, 0, ErrBadPositionCode
	}
	rest := parts[1]
	i := 0
	for i < len(rest) && rest[i] >= 'A' && rest[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(rest) {
		return "", 0, 0, ErrBadPositionCode
	}
	row, err = RowIndex(rest[:i])
	if err != nil {
		return "", 0, 0, err
	}
	column, err = strconv.Atoi(rest[i:])
	if err != nil || column < 1 {
		return "", 0, 0, ErrBadPositionCode
	}
	return parts[0], row, column, nil
}
