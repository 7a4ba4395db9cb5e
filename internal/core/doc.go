// Package core provides the cleaning pipeline for tabular uploads.
//
// This package holds all domain logic independent of any UI or transport
// layer. The web server, the CLI and tests use it without modification.
//
// # Pipeline
//
// A Process call runs these steps in order and writes nothing unless all of
// them succeed:
//
//  1. [Load] reads a .csv, .xls or .xlsx file into a [Dataset]
//  2. [BuildColumnMap] normalizes every header with [NormalizeColumnName]
//  3. [ColumnMap.Resolve] maps the requested canonical names to source columns
//  4. [Project] copies those columns into a [Table]
//  5. [SynthesizeImageName] optionally adds the IMAGEN column
//  6. [OutputWriter.Write] saves {base}_SEMICOLON.csv and {base}_COMMA.csv
//
// # Canonical Names
//
// A canonical name is uppercase ASCII letters, digits and '_'. Diacritics are
// folded ("Descripción" becomes "DESCRIPCION"), whitespace runs become one
// '_' and everything else is dropped. When two headers share a canonical
// name the first one in file order wins; the others are reported as
// [ShadowedColumn] and cannot be selected.
//
// # Error Handling
//
// Every failure wraps one of the sentinel errors in errors.go, so callers
// branch with errors.Is. [MapError] turns them into user messages with a
// support code:
//
//   - FILE001-FILE006: file errors (size, type, not found, empty, unreadable)
//   - VAL004, VAL007: selection errors
//   - ART001-ART002: artifact errors
//   - UPL002-UPL005: busy, unknown upload, cancelled, timeout
//
// # Concurrency
//
// [Service] keeps no per-call state and is safe for concurrent use. Two
// calls for the same base name race on the artifact paths; each file is
// replaced atomically so readers never see a partial write. [Limiter] bounds
// how many calls run at once.
package core
