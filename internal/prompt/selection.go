package prompt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	selectionSeparatorsConstant      = " ,"
	lineTerminatorCharactersConstant = "\r\n"
	invalidSelectionTemplateConstant = "Please enter a number between 0 and %d."
)

var (
	yesVariants = map[string]struct{}{"yes": {}, "y": {}}
	noVariants  = map[string]struct{}{"no": {}, "n": {}}
)

// ErrInvalidSelection indicates selection input that is neither empty, a decline keyword, nor in-range indexes.
var ErrInvalidSelection = errors.New("invalid selection")

// Selection is the operator's answer to a rollback selection prompt.
type Selection struct {
	// Indexes lists the chosen positions in input order with duplicates removed.
	Indexes []int
	// Cancelled reports that the operator declined to select anything.
	Cancelled bool
}

// InvalidSelectionError carries the operator-facing range message for rejected input.
type InvalidSelectionError struct {
	Limit int
	Input string
}

// Error returns the range message shown to the operator.
func (selectionError InvalidSelectionError) Error() string {
	return fmt.Sprintf(invalidSelectionTemplateConstant, selectionError.Limit)
}

// Unwrap allows errors.Is(err, ErrInvalidSelection).
func (selectionError InvalidSelectionError) Unwrap() error {
	return ErrInvalidSelection
}

// ParseSelection interprets raw selection input against a candidate count.
// Only the line terminator is stripped. Empty input selects every index; "no" or
// "n" cancels; otherwise the input must consist of non-negative integers below
// limit separated by spaces or commas, so whitespace-only input is rejected.
func ParseSelection(rawInput string, limit int) (Selection, error) {
	normalizedInput := strings.ToLower(strings.TrimRight(rawInput, lineTerminatorCharactersConstant))

	if len(normalizedInput) == 0 {
		allIndexes := make([]int, 0, limit)
		for index := 0; index < limit; index++ {
			allIndexes = append(allIndexes, index)
		}
		return Selection{Indexes: allIndexes}, nil
	}

	if _, declined := noVariants[normalizedInput]; declined {
		return Selection{Cancelled: true}, nil
	}

	tokens := strings.FieldsFunc(normalizedInput, func(character rune) bool {
		return strings.ContainsRune(selectionSeparatorsConstant, character)
	})
	if len(tokens) == 0 {
		return Selection{}, InvalidSelectionError{Limit: limit, Input: rawInput}
	}

	seenIndexes := make(map[int]struct{}, len(tokens))
	indexes := make([]int, 0, len(tokens))
	for _, token := range tokens {
		if !isDecimal(token) {
			return Selection{}, InvalidSelectionError{Limit: limit, Input: rawInput}
		}
		index, conversionError := strconv.Atoi(token)
		if conversionError != nil || index >= limit {
			return Selection{}, InvalidSelectionError{Limit: limit, Input: rawInput}
		}
		if _, seen := seenIndexes[index]; seen {
			continue
		}
		seenIndexes[index] = struct{}{}
		indexes = append(indexes, index)
	}

	return Selection{Indexes: indexes}, nil
}

func isDecimal(token string) bool {
	for _, character := range token {
		if character < '0' || character > '9' {
			return false
		}
	}
	return len(token) > 0
}
