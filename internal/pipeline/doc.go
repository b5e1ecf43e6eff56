// Package pipeline runs an ordered list of release stages against a shared
// [release.Context].
//
// Stages run strictly in the order they were configured, one at a time.
// A stage ends the run early by returning [release.ErrNoRelease], which is
// a success, or any other error, which is fatal. The runner never retries
// and never reorders or skips stages.
//
// Stages may also implement [Verifier], whose checks all run before the
// first stage, and [Finalizer], whose hooks run after the last stage has
// succeeded.
package pipeline
