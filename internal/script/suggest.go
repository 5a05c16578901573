package script

import (
	"slices"

	"github.com/dgnsrekt/fieldspeech/pkg/speech"
	"github.com/sahilm/fuzzy"
)

var knownRoles = []speech.Role{
	speech.RoleDocument,
	speech.RoleParagraph,
	speech.RoleHeading,
	speech.RoleList,
	speech.RoleListItem,
	speech.RoleLink,
	speech.RoleGraphic,
	speech.RoleBlockQuote,
	speech.RoleCode,
	speech.RoleTable,
	speech.RoleRow,
	speech.RoleCell,
	speech.RoleSeparator,
	speech.RoleMath,
	speech.RoleSection,
}

func knownRole(r speech.Role) bool {
	return slices.Contains(knownRoles, r)
}

func roleNames() []string {
	names := make([]string, len(knownRoles))
	for i, r := range knownRoles {
		names[i] = string(r)
	}
	return names
}

// suggest returns a "did you mean" hint for word, or "".
func suggest(word string, candidates []string) string {
	if word == "" {
		return ""
	}
	matches := fuzzy.Find(word, candidates)
	if len(matches) == 0 {
		return ""
	}
	return ", did you mean " + `"` + matches[0].Str + `"?`
}
