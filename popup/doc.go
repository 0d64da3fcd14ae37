// Package popup keeps a patient popup consistent with user actions.
//
// A Controller owns the single popup State of a page session and moves it
// through its lifecycle:
//
//	Closed -> Loading -> Ready -> (Loading | Ready | Error) -> Closed
//
// Open shows the loading placeholder at once and preloads the variant in the
// background. Search is debounced; ToggleFilter and GoToPage reconcile
// immediately. Every asynchronous completion is tagged with the request
// token of the Open that started it and is dropped if the popup has since
// moved on.
//
// All controller state is guarded by one mutex, and the RenderSink is only
// ever called with that mutex held, so calls reach the sink in a single,
// well-defined order. A RenderSink must not call back into the Controller.
package popup
