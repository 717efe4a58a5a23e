// Package catfacts is a small demo application driven through the message
// boundary. It fetches a cat fact and a cat picture over the host's http
// capability, timestamps them with the host clock, persists them through the
// host's key-value store and asks the host to render after every change.
//
// Host entry points are the package-level ProcessEvent, HandleResponse and
// View functions, all backed by one process-wide bridge.Shell.
package catfacts
