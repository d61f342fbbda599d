// Package vars turns an env file into named variables.
//
// A setup declares array vars (regex groups of variable names rendered as a
// single delimited string) and explicit vars (individual names). Generate
// applies both to one env; the result feeds run-file generation, process
// environments and tabular displays.
package vars
