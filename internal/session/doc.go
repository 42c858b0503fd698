// Package session owns one analysis run end to end: the scan, the duplicate
// groups formed from it, and the selection machine that decides which files
// go. The CLI holds a single Session and never touches the stages directly.
package session
