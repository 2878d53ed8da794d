package publish_test

import (
	"testing"

	"github.com/aretw0/quire/pkg/publish"
	"github.com/stretchr/testify/assert"
)

func TestEscape(t *testing.T) {
	assert.Equal(t, "&lt;a href=&quot;x&quot;&gt;Tom &amp; Jerry&#39;s&lt;/a&gt;", publish.Escape(`<a href="x">Tom & Jerry's</a>`))
	assert.Equal(t, "plain", publish.Escape("plain"))
}

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name   string
		tmpl   string
		values map[string]string
		want   string
	}{
		{
			name:   "replaces every occurrence",
			tmpl:   "<title>{{STORY_NAME}}</title><h1>{{STORY_NAME}}</h1>",
			values: map[string]string{"STORY_NAME": "Tale"},
			want:   "<title>Tale</title><h1>Tale</h1>",
		},
		{
			name:   "values are not rescanned",
			tmpl:   "{{STORY_DATA}}|{{STORY_NAME}}",
			values: map[string]string{"STORY_DATA": "{{STORY_NAME}}", "STORY_NAME": "x"},
			want:   "{{STORY_NAME}}|x",
		},
		{
			name:   "dollar signs are data",
			tmpl:   "{{STORY_DATA}}",
			values: map[string]string{"STORY_DATA": "$& $1 $$"},
			want:   "$& $1 $$",
		},
		{
			name:   "unknown placeholders survive",
			tmpl:   "{{OTHER}} {{STORY_NAME}}",
			values: map[string]string{"STORY_NAME": "Tale"},
			want:   "{{OTHER}} Tale",
		},
		{
			name:   "unterminated",
			tmpl:   "a {{STORY_NAME",
			values: map[string]string{"STORY_NAME": "Tale"},
			want:   "a {{STORY_NAME",
		},
		{
			name:   "nested braces",
			tmpl:   "{{{{STORY_NAME}}}}",
			values: map[string]string{"STORY_NAME": "Tale"},
			want:   "{{Tale}}",
		},
		{
			name:   "odd brace before token",
			tmpl:   "{{{STORY_NAME}} {{{x}}",
			values: map[string]string{"STORY_NAME": "Tale"},
			want:   "{Tale} {{{x}}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, publish.Substitute(tt.tmpl, tt.values))
		})
	}
}
