// Package shell runs external commands on behalf of the fact collectors.
//
// All collectors go through the Runner interface so that tests can
// substitute canned command output, and so that every subprocess is
// bounded by a timeout.
//
// Command output is decoded with Decode: UTF-8 is used when the bytes are
// valid UTF-8, otherwise the output is treated as CP949, which is what
// Korean Windows consoles emit for tools such as ipconfig and ping.
package shell
