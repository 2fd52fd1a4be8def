// Package output renders the human-readable pre-dispatch summary and
// error messages for the console.
package output
