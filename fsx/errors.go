package fsx

import "fmt"

// FormatError reports malformed input: a missing or non-numeric header field,
// a truncated escape sequence or a style token length below the format bias.
type FormatError struct {
	Offset int64
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed fsx stream at offset %d: %s", e.Offset, e.Reason)
}

// IOError reports failure to read underlying stream.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("unable to %s fsx stream: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
