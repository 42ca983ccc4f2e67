package types

import (
	errorsmod "cosmossdk.io/errors"
)

// Codespace groups every error registered by this module
const Codespace = "exotargets"

var (
	// ErrMissingField is returned when a named column does not exist in a table.
	// It signals a schema mismatch and is not recoverable.
	ErrMissingField = errorsmod.Register(Codespace, 2, "missing field")

	// ErrInvalidArgument is returned for unknown identifiers, mismatched input
	// lengths and invalid configuration values.
	ErrInvalidArgument = errorsmod.Register(Codespace, 3, "invalid argument")

	// ErrQuery is returned when the archive cannot be reached or answers with
	// something other than a result table.
	ErrQuery = errorsmod.Register(Codespace, 4, "archive query failed")

	// ErrParse is returned for unparseable cells, dates and spectrum lines.
	ErrParse = errorsmod.Register(Codespace, 5, "parse error")
)
