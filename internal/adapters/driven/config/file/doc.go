// Package file keeps citewise's user-editable state under ~/.citewise:
// config.toml (ConfigStore), the answer prompt templates (PromptStore)
// and a Watcher that picks up edits to either while a long-running
// command is active.
package file
