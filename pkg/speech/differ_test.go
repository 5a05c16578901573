package speech

import "testing"

func TestCommonPrefix(t *testing.T) {
	doc := structural(RoleDocument, "d")
	list := structural(RoleList, "l")
	item := structural(RoleListItem, "i")

	anonymous := func(role Role) *Field { return &Field{Kind: FieldStructural, Role: role} }

	tests := []struct {
		name     string
		old      []*Field
		next     []*Field
		expected int
	}{
		{"both empty", nil, nil, 0},
		{"no cache", nil, []*Field{doc}, 0},
		{"identical", []*Field{doc, list}, []*Field{doc, list}, 2},
		{"deeper new stack", []*Field{doc, list}, []*Field{doc, list, item}, 2},
		{"shallower new stack", []*Field{doc, list, item}, []*Field{doc}, 1},
		{"mismatch stops comparison", []*Field{doc, list, item}, []*Field{doc, item, item}, 1},
		{"same id different attributes", []*Field{{Kind: FieldStructural, Role: RoleList, UniqueID: "l", Attrs: map[string]string{"n": "1"}}}, []*Field{list}, 1},
		{"equality without ids", []*Field{anonymous(RoleTable)}, []*Field{anonymous(RoleTable)}, 1},
		{"inequality without ids", []*Field{anonymous(RoleTable)}, []*Field{anonymous(RoleRow)}, 0},
		{"one side without id", []*Field{anonymous(RoleList)}, []*Field{list}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := commonPrefix(tt.old, tt.next); got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestExitedAncestors(t *testing.T) {
	quote := structural(RoleBlockQuote, "q")
	quote.IsBlock = true
	link := structural(RoleLink, "a")
	old := []*Field{structural(RoleDocument, "d"), quote, link}

	tests := []struct {
		name     string
		reason   Reason
		common   int
		expected string
	}{
		{"innermost first", ReasonCaret, 1, "exit link | exit blockquote"},
		{"nothing left", ReasonCaret, 3, ""},
		{"focus suppressed", ReasonFocus, 1, ""},
		{"block break when reading continuously", ReasonSayAll, 1, "exit link | exit blockquote | [break]"},
		{"no break without a block", ReasonSayAll, 2, "exit link"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &query{
				collab: Collaborators{Fields: fakeRenderer{}, Text: fakeText{}},
				policy: DefaultPolicy(),
				cfg:    DefaultFormatConfig(),
				reason: tt.reason,
			}
			if got := q.exitedAncestors(old, tt.common).String(); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
