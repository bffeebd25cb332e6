// Package runner executes workflows against individual source files.
//
// A run stages the source into the workflow scratchpad, probes every task to
// decide which ones apply, executes the surviving tasks in order, and commits
// the final artifact back over the source path in a single rename. The source
// file is never touched until the commit, so a crash mid-run leaves only
// debris in the scratchpad.
package runner
