// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem under ~/.megafile.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage with change watching
//   - PromptStore: user-editable LLM prompt templates
package file
