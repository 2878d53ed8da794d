package stories

import "github.com/aretw0/quire/pkg/domain"

var persistableStoryFields = map[string]bool{
	domain.FieldName:               true,
	domain.FieldStartPassage:       true,
	domain.FieldStoryFormat:        true,
	domain.FieldStoryFormatVersion: true,
	domain.FieldStylesheet:         true,
	domain.FieldScript:             true,
	domain.FieldZoom:               true,
	domain.FieldSnapToGrid:         true,
	domain.FieldTags:               true,
	domain.FieldTagColors:          true,
}

var persistablePassageFields = map[string]bool{
	domain.FieldName:   true,
	domain.FieldText:   true,
	domain.FieldTags:   true,
	domain.FieldLeft:   true,
	domain.FieldTop:    true,
	domain.FieldWidth:  true,
	domain.FieldHeight: true,
}

// IsPersistableStoryChange reports whether changing these story fields should be saved.
func IsPersistableStoryChange(fields []string) bool {
	for _, f := range fields {
		if persistableStoryFields[f] {
			return true
		}
	}
	return false
}

// IsPersistablePassageChange reports whether changing these passage fields should be saved.
func IsPersistablePassageChange(fields []string) bool {
	for _, f := range fields {
		if persistablePassageFields[f] {
			return true
		}
	}
	return false
}

// IsPersistable reports whether the effect of an action should reach durable storage.
// Init is a load, not a change, and is never persisted.
func IsPersistable(action Action) bool {
	switch a := action.(type) {
	case Init:
		return false
	case UpdateStory:
		return IsPersistableStoryChange(a.Props.Fields())
	case UpdatePassage:
		return IsPersistablePassageChange(a.Props.Fields())
	case UpdatePassages:
		for _, u := range a.Updates {
			if IsPersistablePassageChange(u.Props.Fields()) {
				return true
			}
		}
		return false
	}
	return true
}
