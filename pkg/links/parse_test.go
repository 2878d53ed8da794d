package links

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "All Forms",
			text: "[[A]] and [[B|C]] and [[D->E]] and [[F<-G]]",
			want: []string{"A", "C", "E", "G"},
		},
		{name: "Empty Link", text: "[[]]", want: nil},
		{name: "Empty Link With Setter", text: "[[][x]]", want: nil},
		{name: "No Links", text: "Just prose.", want: nil},
		{
			name: "Setter Discarded",
			text: "[[Go->Cellar][$lamp to true]]",
			want: []string{"Cellar"},
		},
		{
			name: "Duplicates Collapse In Order",
			text: "[[B]] [[A]] [[B]] [[x|A]]",
			want: []string{"B", "A"},
		},
		{
			name: "Rightmost Arrow Wins",
			text: "[[a->b->c]]",
			want: []string{"c"},
		},
		{
			name: "Multiline Text",
			text: "Line one [[North]]\nLine two [[South]]",
			want: []string{"North", "South"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.text))
		})
	}
}

func TestParseInternal(t *testing.T) {
	text := "[[Docs->https://example.com/docs]] [[Home]]"

	assert.Equal(t, []string{"https://example.com/docs", "Home"}, Parse(text))
	assert.Equal(t, []string{"Home"}, ParseInternal(text))
}

func TestIsExternal(t *testing.T) {
	assert.True(t, IsExternal("http://example.com"))
	assert.True(t, IsExternal("file:///tmp/x"))
	assert.False(t, IsExternal("Chapter: One"))
}
