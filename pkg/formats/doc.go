/*
Package formats resolves and loads story formats.

A story names the format it was written for by (name, version). Resolve maps that
reference onto the pool of known formats: an exact match first, then the first entry
with the same name whose version is caret-compatible (same major version, not older),
and finally the configured default.

Format definitions are fetched lazily. Each format moves through the load states
unloaded, loading, then loaded or error; the transitions are expressed as actions
applied by Reduce. Loader fetches definitions through a Fetcher and coalesces concurrent
requests for the same URL into a single fetch.
*/
package formats
