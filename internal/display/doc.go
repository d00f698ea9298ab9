// Package display renders everything lines shows to the user on stdout.
//
// Three kinds of output live here:
//
//   - Diagnostics, one line per failure: "lines: <path> <message>"
//   - The final count, either bare or labeled as "Total length: N"
//   - Warnings about questionable flag combinations
//
// All functions accept an io.Writer so they can be tested against a buffer.
// Color is applied with fatih/color only when the writer is a terminal.
//
// Operational logging belongs in the logger package, not here.
package display
