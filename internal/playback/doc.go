// package playback owns the single audio output used for 30-second previews.
//
// A [Coordinator] guarantees at most one preview is audible at a time. Preview URLs are
// resolved outside its lock; a resolution that arrives after a newer Play call is discarded.
package playback
