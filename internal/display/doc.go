// Package display prepares saved documents for people to read.
//
// The file on disk always uses the English keys consumed by tools. For
// reading, TranslateKeys renames object keys through a KeyMap while
// keeping the original key order, so the translated view lines up with
// the file it was produced from.
package display
