package render

import (
	"fmt"
	"strings"

	"github.com/dgnsrekt/fieldspeech/pkg/speech"
)

// Attribute keys read from structural fields.
const (
	AttrLevel   = "level"
	AttrItems   = "items"
	AttrOrdered = "ordered"
	AttrRows    = "rows"
	AttrColumns = "columns"
	AttrRow     = "row"
	AttrColumn  = "column"
	AttrHeader  = "header"
	AttrAlt     = "alt"
	AttrLabel   = "label"
	AttrTeX     = "tex"
)

// Renderer speaks fields, formats and text in English.
type Renderer struct {
	math *strings.Replacer
}

// New creates a renderer.
func New() *Renderer {
	return &Renderer{math: newMathReplacer()}
}

// Collaborators returns the renderer wired into every speech collaborator.
func (r *Renderer) Collaborators() speech.Collaborators {
	return speech.Collaborators{
		Fields:      r,
		RichContent: r,
		Text:        r,
		Spelling:    r,
	}
}

// FieldSpeech announces entering or leaving a structural field. Frames
// that stay open across queries say nothing.
func (r *Renderer) FieldSpeech(field *speech.Field, ancestors []*speech.Field, mode speech.FieldMode, cfg speech.FormatConfig, extraDetail bool, reason speech.Reason) speech.Sequence {
	if field == nil || field.Presentation == speech.PresentationLayout && isTablePart(field.Role) {
		return nil
	}

	var text string
	switch mode {
	case speech.ModeStartAddedToStack, speech.ModeStartRelative:
		text = entryLabel(field, cfg)
	case speech.ModeEndRelative, speech.ModeEndRemovedFromStack:
		text = exitLabel(field, cfg)
	default:
		return nil
	}
	if text == "" {
		return nil
	}
	return speech.Sequence{speech.TextToken(text)}
}

func isTablePart(role speech.Role) bool {
	return role == speech.RoleTable || role == speech.RoleRow || role == speech.RoleCell
}

func entryLabel(field *speech.Field, cfg speech.FormatConfig) string {
	var parts []string
	switch field.Role {
	case speech.RoleHeading:
		if cfg.ReportHeadings {
			parts = append(parts, strings.TrimSpace("heading level "+field.Attr(AttrLevel)))
		}
	case speech.RoleList:
		if cfg.ReportLists {
			parts = append(parts, listLabel(field))
		}
	case speech.RoleLink:
		if cfg.ReportLinks {
			if field.States.Has(speech.StateVisited) {
				parts = append(parts, "visited")
			}
			parts = append(parts, "link")
		}
	case speech.RoleGraphic:
		parts = append(parts, "graphic")
		if alt := field.Attr(AttrAlt); alt != "" {
			parts = append(parts, alt)
		}
	case speech.RoleBlockQuote:
		if cfg.ReportBlockQuotes {
			parts = append(parts, "block quote")
		}
	case speech.RoleCode:
		if field.IsBlock {
			parts = append(parts, "code")
		}
	case speech.RoleTable:
		if cfg.ReportTables {
			parts = append(parts, tableLabel(field))
		}
	case speech.RoleCell:
		if cfg.ReportTables {
			parts = append(parts, cellLabel(field)...)
		}
	case speech.RoleSeparator:
		parts = append(parts, "separator")
	case speech.RoleMath:
		parts = append(parts, "math")
	default:
		if label := field.Attr(AttrLabel); label != "" {
			parts = append(parts, label)
		}
	}

	for _, s := range []speech.FieldState{speech.StateChecked, speech.StateExpanded, speech.StateCollapsed} {
		if field.States.Has(s) {
			parts = append(parts, string(s))
		}
	}
	return strings.Join(parts, " ")
}

func exitLabel(field *speech.Field, cfg speech.FormatConfig) string {
	switch field.Role {
	case speech.RoleList:
		if cfg.ReportLists {
			return "out of list"
		}
	case speech.RoleTable:
		if cfg.ReportTables {
			return "out of table"
		}
	case speech.RoleBlockQuote:
		if cfg.ReportBlockQuotes {
			return "out of block quote"
		}
	case speech.RoleCode:
		if field.IsBlock {
			return "out of code"
		}
	}
	return ""
}

func listLabel(field *speech.Field) string {
	kind := "list"
	if field.Attr(AttrOrdered) == "true" {
		kind = "numbered list"
	}
	switch n := field.Attr(AttrItems); n {
	case "":
		return kind
	case "1":
		return kind + " with 1 item"
	default:
		return fmt.Sprintf("%s with %s items", kind, n)
	}
}

func tableLabel(field *speech.Field) string {
	rows, cols := field.Attr(AttrRows), field.Attr(AttrColumns)
	if rows == "" || cols == "" {
		return "table"
	}
	return fmt.Sprintf("table with %s %s and %s %s", rows, plural(rows, "row"), cols, plural(cols, "column"))
}

func cellLabel(field *speech.Field) []string {
	var parts []string
	if field.Attr(AttrHeader) == "true" {
		parts = append(parts, "column header")
	}
	if row := field.Attr(AttrRow); row != "" {
		parts = append(parts, "row "+row)
	}
	if col := field.Attr(AttrColumn); col != "" {
		parts = append(parts, "column "+col)
	}
	return parts
}

func plural(n, word string) string {
	if n == "1" {
		return word
	}
	return word + "s"
}
