package prompt

import "errors"

var (
	// ErrSourceMissing indicates the backing prompts file does not exist.
	ErrSourceMissing = errors.New("prompts file not found")
	// ErrSourceMalformed indicates the prompts document could not be parsed
	// into a mapping of template name to system/user fragments.
	ErrSourceMalformed = errors.New("prompts file malformed")
	// ErrTemplateNotFound indicates a render request for an unknown template name.
	ErrTemplateNotFound = errors.New("prompt template not found")
	// ErrMissingValue indicates a placeholder in the template text has no
	// corresponding entry in the supplied values.
	ErrMissingValue = errors.New("missing placeholder value")
)
