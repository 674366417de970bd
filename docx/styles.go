package docx

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Role selects kind of style to look for.
type Role int

const (
	RoleParagraph Role = iota
	RoleCharacter
)

func (r Role) String() string {
	switch r {
	case RoleParagraph:
		return "paragraph"
	case RoleCharacter:
		return "character"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Styles resolves style names against definitions in word/styles.xml.
type Styles struct {
	byID   [2]map[string]string
	byName [2]map[string]string
}

func newStyles() *Styles {
	s := &Styles{}
	for i := range s.byID {
		s.byID[i] = make(map[string]string)
		s.byName[i] = make(map[string]string)
	}
	return s
}

// parseStyles reads style definitions, nil document results in empty set.
func parseStyles(doc *etree.Document) *Styles {
	s := newStyles()
	if doc == nil {
		return s
	}
	for _, el := range doc.FindElements("//w:styles/w:style") {
		var role Role
		switch el.SelectAttrValue("w:type", "") {
		case "paragraph":
			role = RoleParagraph
		case "character":
			role = RoleCharacter
		default:
			continue
		}
		id := el.SelectAttrValue("w:styleId", "")
		if len(id) == 0 {
			continue
		}
		s.byID[role][id] = id
		if name := el.FindElement("w:name"); name != nil {
			if v := name.SelectAttrValue("w:val", ""); len(v) > 0 {
				s.byName[role][strings.ToLower(v)] = id
			}
		}
	}
	return s
}

// Resolve returns style id for name. Style id is tried first, then display
// name ignoring case (Word keeps built-in names in lower case, "heading 1").
func (s *Styles) Resolve(name string, role Role) (string, bool) {
	if role != RoleParagraph && role != RoleCharacter {
		return "", false
	}
	if id, ok := s.byID[role][name]; ok {
		return id, true
	}
	id, ok := s.byName[role][strings.ToLower(name)]
	return id, ok
}

// Len returns number of known styles of the role.
func (s *Styles) Len(role Role) int {
	if role != RoleParagraph && role != RoleCharacter {
		return 0
	}
	return len(s.byID[role])
}
