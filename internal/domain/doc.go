// Package domain defines the canonical lead-conversation types.
//
// Types in this package are pure value objects with no behavior beyond
// small accessors, no database dependencies, and no HTTP concerns. They are
// the shared language between the normalizer, the analytics layer, and the
// service/API shell.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No *sql.DB, no http.Request, no context.Context in struct fields
//   - JSON tags are allowed (they're metadata, not behavior)
//   - Constants and enums belong here
package domain
