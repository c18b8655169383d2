package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for pipeline validation.
var (
	ErrInputNotFound           = errors.New("input file not found")
	ErrUnsupportedInputFormat  = errors.New("unsupported input format")
	ErrUnsupportedOutputFormat = errors.New("unsupported output format")
	ErrInvalidOptions          = errors.New("invalid options")

	// ErrProcessing and ErrConversion match any ProcessingError / ConversionError.
	ErrProcessing = errors.New("processing failed")
	ErrConversion = errors.New("conversion failed")
)

// ProcessingError is returned by processors when the input container cannot
// be opened or parsed.
type ProcessingError struct {
	Format InputFormat
	Path   string
	Err    error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s processing error: %v", e.Format, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrProcessing) true for every ProcessingError.
func (e *ProcessingError) Is(target error) bool { return target == ErrProcessing }

// ConversionError is returned by converters.
type ConversionError struct {
	Format OutputFormat
	Err    error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s conversion error: %v", e.Format, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrConversion) true for every ConversionError.
func (e *ConversionError) Is(target error) bool { return target == ErrConversion }
