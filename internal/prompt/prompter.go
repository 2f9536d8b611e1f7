package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/temirov/gikkon/internal/utils"
)

const (
	questionMarkConstant            = "?"
	defaultYesSuffixConstant        = " [Y/n]: "
	defaultNoSuffixConstant         = " [y/N]: "
	candidateLineTemplateConstant   = "%d %s\n"
	invalidSelectionRetryTemplate   = "%s\n\n"
	selectionInstructionsConstant   = "Press Enter to roll back all changes.\nType the number(s) of change(s), separated by ',' or ' ', to roll back specific files.\nType 'no' to skip this step.\n\n"
	freeTextPromptSeparatorConstant = " "
	lineTerminatorConstant          = '\n'
)

// IOPrompter asks questions on a writer and reads single-line answers from a reader.
type IOPrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewIOPrompter constructs a prompter; output is flushed after every write so questions appear before the read blocks.
func NewIOPrompter(input io.Reader, output io.Writer) *IOPrompter {
	if output == nil {
		output = io.Discard
	}
	return &IOPrompter{reader: bufio.NewReader(input), writer: utils.NewFlushingWriter(output)}
}

// AskYesNo asks a question answered with yes/y or no/n; any other answer, including end of input, yields the default.
func (prompter *IOPrompter) AskYesNo(question string, defaultAnswer bool) (bool, error) {
	if !strings.HasSuffix(question, questionMarkConstant) {
		question += questionMarkConstant
	}
	suffix := defaultNoSuffixConstant
	if defaultAnswer {
		suffix = defaultYesSuffixConstant
	}

	response, _, readError := prompter.ask(question + suffix)
	if readError != nil {
		return defaultAnswer, readError
	}

	normalizedResponse := strings.ToLower(strings.TrimSpace(response))
	if _, affirmative := yesVariants[normalizedResponse]; affirmative {
		return true, nil
	}
	if _, negative := noVariants[normalizedResponse]; negative {
		return false, nil
	}
	return defaultAnswer, nil
}

// AskFreeText asks for a line of text, returning the default when the answer is blank. Case is preserved.
func (prompter *IOPrompter) AskFreeText(question string, defaultAnswer string) (string, error) {
	questionText := question
	if len(questionText) > 0 && !strings.HasSuffix(questionText, freeTextPromptSeparatorConstant) {
		questionText += freeTextPromptSeparatorConstant
	}

	response, _, readError := prompter.ask(questionText)
	if readError != nil {
		return defaultAnswer, readError
	}
	trimmedResponse := strings.TrimSpace(response)
	if len(trimmedResponse) == 0 {
		return defaultAnswer, nil
	}
	return trimmedResponse, nil
}

// AskSelection lists the candidates with their indexes and repeats the question until the answer parses.
// End of input without an answer cancels the selection.
func (prompter *IOPrompter) AskSelection(candidates []string) (Selection, error) {
	var promptBuilder strings.Builder
	promptBuilder.WriteString(selectionInstructionsConstant)
	for candidateIndex, candidate := range candidates {
		promptBuilder.WriteString(fmt.Sprintf(candidateLineTemplateConstant, candidateIndex, candidate))
	}
	promptText := promptBuilder.String()

	for {
		response, reachedEnd, readError := prompter.ask(promptText)
		if readError != nil {
			return Selection{}, readError
		}
		if reachedEnd && len(response) == 0 {
			return Selection{Cancelled: true}, nil
		}

		selection, parseError := ParseSelection(response, len(candidates))
		if parseError == nil {
			return selection, nil
		}

		var invalidSelection InvalidSelectionError
		if !errors.As(parseError, &invalidSelection) {
			return Selection{}, parseError
		}
		if _, writeError := fmt.Fprintf(prompter.writer, invalidSelectionRetryTemplate, invalidSelection.Error()); writeError != nil {
			return Selection{}, writeError
		}
		if reachedEnd {
			return Selection{Cancelled: true}, nil
		}
	}
}

// ask writes the question and returns the answer without its line terminator and whether input is exhausted.
func (prompter *IOPrompter) ask(question string) (string, bool, error) {
	if _, writeError := io.WriteString(prompter.writer, question); writeError != nil {
		return "", false, writeError
	}

	response, readError := prompter.reader.ReadString(lineTerminatorConstant)
	reachedEnd := errors.Is(readError, io.EOF)
	if readError != nil && !reachedEnd {
		return "", false, readError
	}
	return strings.TrimRight(response, lineTerminatorCharactersConstant), reachedEnd, nil
}
