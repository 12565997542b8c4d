// Package postbuild runs the work that follows a documentation site build.
//
// An Orchestrator reads the search-index artifact the build produced and
// hands it to every registered Task (social preview images, search index
// publication) at the same time. A run succeeds only when the artifact could
// be read and every task succeeded. A failing task never cancels the others;
// all failures are reported together.
//
// Watcher and Scheduler re-run an Orchestrator when the artifact changes or on
// a fixed interval.
package postbuild
