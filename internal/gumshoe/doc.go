// Package gumshoe is the typed domain layer over the agent service
// protocol. It turns tool-call payloads into domain records (chats,
// turfs, response statuses), exposes one method per remote operation,
// and provides [Client.Stream], which folds "submit a message, then
// poll for the result" into a single cancellable blocking call that
// reports incremental progress.
package gumshoe
