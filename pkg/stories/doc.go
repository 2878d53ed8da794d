/*
Package stories holds the state transitions of a story library.

Reduce is a pure function from a list of stories and an Action to a new list. It never
mutates its input and keeps the pointer identity of every story and passage it does not
touch, so observers can detect changes by comparing pointers.

Integration races (an action naming a story or passage that no longer exists, a rename
onto an existing name) are logged and ignored: the reducer returns its input unchanged.

Repair heals lists of stories that came from outside the reducer (imports, old saves,
other sessions) and restores every invariant of the data model. Entities that are already
valid come back as the same pointer.
*/
package stories
