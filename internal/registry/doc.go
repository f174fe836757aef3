// Package registry owns the set of loaded models. It is structured into small
// files by concern:
//
//   - registry.go: Registry type, constructor, load/unload/lookup/list.
//   - record.go: internal record and its read-only projections.
//   - errors.go: sentinel errors and helpers (IsAlreadyLoaded, IsNotFound).
//   - events.go: lifecycle events and the Publisher fan-out.
//   - validate.go: model name rules.
//   - loader.go: directory scanning for preloading artifacts.
//
// Every operation takes the registry's single mutex for the whole traversal or
// mutation. Publishers and filesystem calls always run outside of it.
package registry
