// Package diag is the diagnostics bridge between blop containers and the
// host program.
//
// Containers never write to a terminal or exit the process themselves. They
// report through a Bridge:
//
//	Log(level, msg)   informational output, filtered by level
//	Abort(code, msg)  fatal termination, never returns
//
// Writer is the default bridge (stderr, colored level tags, os.Exit). Recorder
// keeps everything in a Bag and turns aborts into a recoverable panic, which
// is what tests use. Traced dumps a trace ring before aborting.
package diag
