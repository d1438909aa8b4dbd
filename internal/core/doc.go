// Package core provides the cleaning engine for tabular datasets.
//
// This package holds all domain logic independent of any file format,
// UI or transport layer. It can be used by web handlers, CLI tools, or
// tests without modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Dataset: an in-memory table of [Cell] values with unique column names.
//   - Passes: transforms over a Dataset that never modify their input.
//     Header passes ([NormalizeColumns], [SelectColumns]), column rules
//     ([EmailRule], [NameRule], [PhoneRule]) and [DropDuplicates].
//   - Pipeline: runs the passes in a fixed order and aggregates a [Report].
//   - Service: the entry point for frontends. Applies a concurrency limit
//     and stores a [RunRecord] per run.
//
// # Rules
//
// Each rule is a pure per-cell function ([CheckEmail], [CheckName],
// [CheckPhone]) returning an [Outcome]: Unchanged, Repaired or Rejected.
// Rejected cells are replaced by the empty string. Empty-string cells
// are always Unchanged, so every rule is idempotent.
//
//	p, err := core.NewPipeline(core.DefaultOptions(), logger)
//	if err != nil {
//	    return err // ErrInvalidConfig
//	}
//	cleaned, report, err := p.Run(ctx, ds)
//
// # Failure isolation
//
// An error or panic inside a pass is recovered. The pass's input flows on
// to the next pass and the failure is recorded in its [PassReport].
// Options.StopOnError turns the first failure into a returned error.
//
// # Profiles
//
// Named option presets are registered at init time with [Register]; see
// package profiles.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - CFG001-CFG003: Configuration errors
//   - IO001-IO003: Load, chunk and path errors
//   - FILE001-FILE005: File errors (size, parse, encoding)
//   - VAL001-VAL002: Dataset and column errors
//   - JOB001-JOB004: Job limits, timeouts and run lookups
//   - TR001: Header translation errors
package core
