// Package repl provides the interactive mode of smctl.
//
// Each line is split into arguments (single and double quotes group
// words) and handed to an executor that runs it as a smctl command. The
// session established by "login" lives until "logout" or exit. A line
// ending in "?" lists matching commands instead of running.
package repl
