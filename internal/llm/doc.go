// Package llm condenses portal conflicts and proposes alternative
// names through an OpenAI-compatible chat completions endpoint.
//
// The client tries the fast model first and retries once on the smart
// model; when both attempts fail, or no API key is configured, it
// degrades to deterministic template suggestions so a name check never
// fails outright on an upstream model outage.
package llm
