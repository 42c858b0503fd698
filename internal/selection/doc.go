// Package selection tracks which files of each duplicate group are marked
// for removal. The machine is the sole writer of selection state and rejects
// any transition that would select every member of a group, so at least one
// copy of every title survives execution.
package selection
