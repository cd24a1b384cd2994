// Package filex provides file system helpers for the script library and the
// history database.
//
// Package: filex
// Title: File Utilities
// Description: Existence checks, human readable sizes and atomic writes.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation with comprehensive file utilities
// - 2026-10-18 v0.2.0: Reduced to the helpers hivemind uses, atomic writes added
package filex
