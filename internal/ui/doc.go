// Package ui renders command activity for operators reading a terminal.
//
// ConsoleCommandEventLogger plugs into the shell executor when the console log
// format is selected, so each git invocation shows up as a short sentence
// instead of a JSON record.
package ui
