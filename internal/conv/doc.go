// Package conv provides checked integer conversions.
//
// Lengths and sizes read from files and blob stores are untrusted; decoding
// them through conv turns an overflow into an error instead of a silently
// truncated count.
package conv
