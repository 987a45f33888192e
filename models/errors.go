package models

import (
	"errors"
	"fmt"
)

// MissingInputError means no uploaded file could be classified into Role.
type MissingInputError struct {
	Role FileRole
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing %s file: no uploaded file matches the %s column signature", e.Role, e.Role)
}

// MalformedAmountError is a non-blank monetary cell that is not a number.
// Row is the 1-based row number in the source sheet (header is row 1).
type MalformedAmountError struct {
	Table  FileRole
	Row    int
	Column string
	Value  string
}

func (e *MalformedAmountError) Error() string {
	return fmt.Sprintf("malformed amount %q in %s row %d column %s", e.Value, e.Table, e.Row, e.Column)
}

type MalformedTimestampError struct {
	Row    int
	Column string
	Value  string
}

func (e *MalformedTimestampError) Error() string {
	return fmt.Sprintf("malformed timestamp %q in settlement row %d column %s", e.Value, e.Row, e.Column)
}

type MissingColumnError struct {
	Table  FileRole
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s file is missing required column %s", e.Table, e.Column)
}

type UnreadableFileError struct {
	File string
	Err  error
}

func (e *UnreadableFileError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.File, e.Err)
}

func (e *UnreadableFileError) Unwrap() error {
	return e.Err
}

type UnsupportedPlatformError struct {
	Platform string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform: %s", e.Platform)
}

// NotImplementedError is a known platform whose reconciliation rules are not defined yet.
// Callers should present it as "not yet available", not as a failure.
type NotImplementedError struct {
	Platform string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("reconciliation for %s is not available yet", e.Platform)
}

// IsUserError reports whether err is caused by the submitted files or parameters.
func IsUserError(err error) bool {
	var (
		missingInput   *MissingInputError
		malformed      *MalformedAmountError
		badTimestamp   *MalformedTimestampError
		missingColumn  *MissingColumnError
		unreadableFile *UnreadableFileError
	)
	return errors.As(err, &missingInput) ||
		errors.As(err, &malformed) ||
		errors.As(err, &badTimestamp) ||
		errors.As(err, &missingColumn) ||
		errors.As(err, &unreadableFile)
}
