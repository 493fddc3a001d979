// Package assist is the suggestion engine: it decides when to ask a
// provider for autocomplete or grammar suggestions, reconciles what comes
// back against the live document, and backs off when the provider signals
// rate limiting.
//
// # Architecture
//
// Every state change happens on a single serial Loop. Editor events,
// debounce timers and provider completions are all posted to it, so the
// lifecycles never need their own locks:
//
//	editor ──Dispatch(Event)──► Loop ──► Engine.Handle ──► lifecycles
//	                             ▲                            │
//	                             │                      Runner.Go(provider call)
//	                 timers / completions ◄──────────────────┘
//
// Provider calls run off the loop. In-flight calls are never cancelled
// when the user keeps typing; their results are validated against the
// document when they come back and discarded if stale.
//
// # Lifecycles
//
// Autocomplete moves through Idle, Scheduled, Fetching and Displayed.
// Grammar checking moves through Idle, Scheduled, Checking and Annotated.
// Both consult the shared rate-limit guard and the current settings
// before every provider call.
//
// # Testing
//
// EngineContext accepts a fake clock, a synchronous Dispatch and a manual
// Runner, which lets tests drive the engine deterministically through
// Handle without starting the loop.
package assist
