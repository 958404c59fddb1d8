// Package hook implements the Hook Registry & Types component: a
// catalog of typed callables (action, task, check, before, after,
// event, condition, transform, context, setup, teardown, load, save)
// keyed by stage and name.
//
// The registry is never a package-level singleton. Callers construct a
// Registry and inject it into the Graph Assembler; this mirrors the
// corpus's provider.Registry[T] generic pattern but is specialized here
// because hooks are keyed by (stage, kind, name) rather than by name
// alone.
package hook
