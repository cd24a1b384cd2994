// Package stringx provides string helpers used across hivemind.
//
// Package: stringx
// Title: String Utilities
// Description: Unicode aware helpers for blank checks, truncation, line
//              splitting and indentation handling. The block literal lexer
//              uses Dedent; the CLI and REPL use Truncate for previews.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with core utilities
// - 2026-10-18 v0.2.0: Dedent and CommonIndent added, case and random helpers removed
package stringx
