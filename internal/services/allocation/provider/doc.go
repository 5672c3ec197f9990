// Package provider implements decision providers: an OpenAI-compatible chat
// completions adapter and a scripted provider that replays queued answers.
package provider
