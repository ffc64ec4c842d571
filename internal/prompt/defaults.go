package prompt

import _ "embed"

//go:embed prompts.yml
var defaultPrompts []byte

// Default returns a Store backed by the prompts shipped with the module.
func Default() *Store {
	return NewStoreFromBytes(defaultPrompts)
}

// FromConfig returns a Store backed by the file at path, or the embedded
// defaults when path is empty.
func FromConfig(path string) *Store {
	if path == "" {
		return Default()
	}
	return NewStore(path)
}
