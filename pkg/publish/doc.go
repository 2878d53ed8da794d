// Package publish serializes stories to the HTML story format and parses it back.
//
// A published story is a <tw-storydata> element holding the stylesheet, script, tag
// colors and one <tw-passagedata> element per passage. Binding that element into a
// story format's template produces a playable page. Archives hold the elements of many
// stories with no template at all.
package publish
