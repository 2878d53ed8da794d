package publish

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/aretw0/quire/pkg/domain"
)

// ImportOption configures Import.
type ImportOption func(*importer)

type importer struct {
	ids domain.IDGenerator
	now func() time.Time
}

// WithImportIDs overrides the id source for imported stories and passages.
func WithImportIDs(ids domain.IDGenerator) ImportOption {
	return func(i *importer) {
		i.ids = ids
	}
}

// WithImportClock overrides the time stamped as lastUpdate on imported stories.
func WithImportClock(now func() time.Time) ImportOption {
	return func(i *importer) {
		i.now = now
	}
}

// Import parses every <tw-storydata> element in a published page or archive.
// Imported stories get fresh ids; names, IFIDs and content are kept. Malformed numbers
// fall back to defaults and the result should be passed through the repair pass before
// it is merged into a library.
func Import(r io.Reader, opts ...ImportOption) ([]*domain.Story, error) {
	imp := &importer{ids: domain.UUIDGenerator{}, now: time.Now}
	for _, opt := range opts {
		opt(imp)
	}

	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse story html: %w", err)
	}

	var result []*domain.Story
	for n := range doc.Descendants() {
		if n.Type == html.ElementNode && n.Data == "tw-storydata" {
			result = append(result, imp.story(n))
		}
	}
	return result, nil
}

// ImportString is Import over a string.
func ImportString(src string, opts ...ImportOption) ([]*domain.Story, error) {
	return Import(strings.NewReader(src), opts...)
}

func (imp *importer) story(n *html.Node) *domain.Story {
	s := domain.NewStory()
	s.ID = imp.ids.NewID()
	s.LastUpdate = imp.now()
	if v, ok := attr(n, "name"); ok {
		s.Name = v
	}
	s.IFID, _ = attr(n, "ifid")
	s.StoryFormat, _ = attr(n, "format")
	s.StoryFormatVersion, _ = attr(n, "format-version")
	if v, ok := attr(n, "tags"); ok {
		s.Tags = splitTags(v)
	}
	if v, ok := attr(n, "zoom"); ok {
		s.Zoom = parseNumber(v, domain.DefaultZoom)
	}
	startNode, _ := attr(n, "startnode")

	var stylesheets, scripts []string
	for c := range n.Descendants() {
		if c.Type != html.ElementNode {
			continue
		}
		switch {
		case c.DataAtom == atom.Style && (hasAttr(c, "role", "stylesheet") || hasAttr(c, "type", "text/twine-css")):
			stylesheets = append(stylesheets, text(c))
		case c.DataAtom == atom.Script && (hasAttr(c, "role", "script") || hasAttr(c, "type", "text/twine-javascript")):
			scripts = append(scripts, text(c))
		case c.Data == "tw-tag":
			name, _ := attr(c, "name")
			color, _ := attr(c, "color")
			if name != "" && color != "" {
				s.TagColors[name] = domain.Color(color)
			}
		case c.Data == "tw-passagedata":
			p := imp.passage(c, s.ID)
			if pid, _ := attr(c, "pid"); pid != "" && pid == startNode {
				s.StartPassage = p.ID
			}
			s.Passages = append(s.Passages, p)
		}
	}
	s.Stylesheet = strings.Join(stylesheets, "\n")
	s.Script = strings.Join(scripts, "\n")
	return s
}

func (imp *importer) passage(n *html.Node, storyID string) *domain.Passage {
	p := domain.NewPassage()
	p.ID = imp.ids.NewID()
	p.Story = storyID
	p.Name, _ = attr(n, "name")
	if v, ok := attr(n, "tags"); ok {
		p.Tags = splitTags(v)
	}
	if v, ok := attr(n, "position"); ok {
		p.Left, p.Top = parsePair(v, 0, 0)
	}
	if v, ok := attr(n, "size"); ok {
		p.Width, p.Height = parsePair(v, domain.DefaultPassageWidth, domain.DefaultPassageHeight)
	}
	p.Text = text(n)
	return p
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasAttr(n *html.Node, key, value string) bool {
	v, ok := attr(n, key)
	return ok && v == value
}

// text returns the concatenated text content of n.
func text(n *html.Node) string {
	var b strings.Builder
	for c := range n.Descendants() {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

func splitTags(s string) []string {
	tags := strings.Fields(s)
	if tags == nil {
		return []string{}
	}
	return tags
}

func parseNumber(s string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return f
}

func parsePair(s string, defA, defB float64) (float64, float64) {
	a, b, ok := strings.Cut(s, ",")
	if !ok {
		return defA, defB
	}
	return parseNumber(a, defA), parseNumber(b, defB)
}
