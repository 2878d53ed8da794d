/*
Package observability provides Prometheus instrumentation for a story library.

Metrics counts dispatched and rejected actions, repair corrections, format loads and
publish durations. It satisfies stories.Observer so the reducers can report rejections
and corrections without importing Prometheus themselves.
*/
package observability
