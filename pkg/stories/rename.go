package stories

import (
	"regexp"
	"strings"

	"github.com/aretw0/quire/pkg/domain"
)

// RenamePassage returns the actions that rename a passage and rewrite every link to it
// in the other passages of the story. Nil is returned when the passage does not exist,
// the name is unchanged or already taken.
func RenamePassage(s *domain.Story, passageID, name string) []Action {
	p := s.PassageByID(passageID)
	if p == nil || p.Name == name || s.PassageByName(name) != nil {
		return nil
	}

	actions := []Action{UpdatePassage{
		StoryID:   s.ID,
		PassageID: p.ID,
		Props:     PassageProps{Name: Ptr(name)},
	}}
	if p.Name == "" {
		return actions
	}

	var updates []PassageUpdate
	for _, other := range s.Passages {
		text := ReplaceLinkTarget(other.Text, p.Name, name)
		if text != other.Text {
			updates = append(updates, PassageUpdate{PassageID: other.ID, Props: PassageProps{Text: Ptr(text)}})
		}
	}
	if len(updates) > 0 {
		actions = append(actions, UpdatePassages{StoryID: s.ID, Updates: updates})
	}
	return actions
}

// ReplaceLinkTarget rewrites links to oldName in text so they point at newName.
// Display text and setter clauses are left alone.
func ReplaceLinkTarget(text, oldName, newName string) string {
	old := regexp.QuoteMeta(oldName)
	repl := strings.ReplaceAll(newName, "$", "$$")

	simple := regexp.MustCompile(`\[\[` + old + `(\]\[.*?)?\]\]`)
	compound := regexp.MustCompile(`\[\[(.*?)(\||->|<-)` + old + `(\]\[.*?)?\]\]`)

	text = simple.ReplaceAllString(text, "[["+repl+"${1}]]")
	return compound.ReplaceAllString(text, "[[${1}${2}"+repl+"${3}]]")
}
