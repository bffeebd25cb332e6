// Package preflight provides readiness checks for the filesystem paths and
// external binaries omzet depends on.
//
// The daemon runs RunAll at startup so a misconfigured scratchpad or missing
// shell fails loudly before any workflow touches a library file. The CLI
// deps command reuses the same checks to display readiness.
package preflight
