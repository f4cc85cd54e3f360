// Package flatten converts the nested, variable-shape records returned by
// the Copilot usage reporting API into rectangular row sets suitable for CSV
// serialization.
//
// Three report shapes are modeled precisely: per-user activity detail,
// per-tenant adoption summary, and per-tenant daily adoption trend. Any
// other report type goes through a generic type-driven fallback that never
// fails on well-formed input. Missing and null fields always degrade to
// empty columns; no rule has a code path that errors on malformed-but-
// well-typed data.
package flatten
