/*
Package persistence connects a story library to durable storage.

Saver observes every reduced action and writes the stories it changed, one story per
write. Writes to the same story are serialized in process with a reference-counted
mutex and, when a DistributedLocker is configured, across processes too.

Sub-package middleware wraps StoryStores with extra behavior such as encryption at rest.
*/
package persistence
