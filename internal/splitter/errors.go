package splitter

import "errors"

// Domain errors for the splitter package.
var (
	// ErrReadInput is returned when the input log cannot be opened or parsed.
	ErrReadInput = errors.New("splitter: reading input log failed")

	// ErrWriteOutput is returned when an output file cannot be written.
	ErrWriteOutput = errors.New("splitter: writing output failed")

	// ErrNoInput is returned when no input path is configured.
	ErrNoInput = errors.New("splitter: no input file given")
)
