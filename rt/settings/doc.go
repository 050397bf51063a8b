// Package settings provides runtime-tunable parameters for the effect runtime.
//
// Typical knobs are the group-stop grace period, the single-task stop grace, a global
// "full fidelity" override and a duration scale applied to every effect.
//
// # Design highlights
//
//   - Strong-typed handles: BoolVar / Float64Var / DurationVar, all backed by Var[T].
//   - Read path (Get) is lock-free and non-blocking; hot loops may call it freely.
//   - Write path (Set / SetFromString / ResetToDefault) is serialized per Settings.
//   - onChange callbacks run synchronously after a successful write, in registration
//     order. Callback panics are recovered and swallowed.
//
// # Quick start
//
//	s := settings.New()
//	grace, _ := s.Duration("fx.stop_all.grace", time.Second,
//		settings.WithMin(10*time.Millisecond),
//		settings.WithMax(10*time.Second),
//	)
//
//	_ = s.SetFromString("fx.stop_all.grace", "250ms")
//	_ = grace.Get() // 250ms
//
// # Key rules
//
// Keys must be non-empty and can only contain characters in [A-Za-z0-9._-].
//
// Bool parsing in SetFromString accepts true/false, t/f, 1/0, yes/no, y/n, on/off
// (case-insensitive).
package settings
