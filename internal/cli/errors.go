package cli

import "errors"

// Error variables for command-line handling.
var (
	ErrFlagRequiresArg  = errors.New("flag requires an argument")
	ErrUnknownFlag      = errors.New("unknown flag")
	ErrUnknownCommand   = errors.New("unknown command")
	ErrVariantRequired  = errors.New("cannot infer variant from path, pass -V")
	ErrMissingArgs      = errors.New("missing arguments")
	ErrTooManyArgs      = errors.New("too many arguments")
	ErrUnknownFormat    = errors.New("format must be one of text, json, cbor")
	ErrInvalidInputLine = errors.New("invalid input")
)
