// Package effect defines the value types and collaborator contracts shared by effect tasks.
//
// It is a leaf package: it has no behavior beyond validation, easing math and small gate
// policies. The running side lives in rt/task (one cancellable task per effect instance)
// and rt/scope (per-owner registries and the process-wide coordinator).
//
// # Configs
//
// Three config families are provided, one per primitive:
//
//   - PulseConfig: repeating expand/contract cycles, optionally forever.
//   - FadeConfig: a one-shot opacity ramp.
//   - TranslateConfig: a one-shot position ramp, optionally reverting to baseline.
//
// Configs are plain values. Presets (PulseSubtle, FadeIn, Nudge, ...) return pre-filled
// values that callers may copy and tweak:
//
//	cfg := effect.PulseCallToAction()
//	cfg.PulseCount = 2
//
// Validate rejects negative durations, negative counts (other than Forever) and
// non-finite numbers. Validation errors wrap ErrInvalidConfig.
//
// # Collaborators
//
// The core never touches pixels. It drives three injected collaborators:
//
//   - Renderer: interpolates a property over time, and reads/writes property values.
//   - Dispatcher: runs a function on the single UI-affine context and waits for it.
//   - Gate: decides once whether full-fidelity animation is allowed, and may adapt or
//     bypass a config.
//
// Bypass means the end-state is applied immediately without animating.
package effect
