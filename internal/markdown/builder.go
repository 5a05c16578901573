package markdown

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/dgnsrekt/fieldspeech/internal/render"
	"github.com/dgnsrekt/fieldspeech/pkg/speech"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/zeebo/blake3"
)

// item is one element of the flattened document. Text items cover
// text[off:off+n]; enter items record the offset their field starts at.
type item struct {
	kind  speech.EventKind
	field *speech.Field
	off   int
	n     int
}

type span struct {
	start, end int
}

// treeBuilder flattens a goldmark AST into items.
type treeBuilder struct {
	docID  string
	source []byte

	items []item
	text  []rune

	starts map[ast.Node]int
	spans  map[speech.Unit][]span

	bold, italic, code, strike int
	langs                      []string
}

func newTreeBuilder(docID string, source []byte) *treeBuilder {
	return &treeBuilder{
		docID:  docID,
		source: source,
		starts: make(map[ast.Node]int),
		spans:  make(map[speech.Unit][]span),
	}
}

func (b *treeBuilder) visit(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n := node.(type) {
	case *ast.Document:
		b.structural(n, entering, b.field(n, speech.RoleDocument, true, nil))

	case *ast.Paragraph:
		b.block(n, entering, b.field(n, speech.RoleParagraph, true, nil), speech.UnitParagraph)

	case *ast.TextBlock:
		b.block(n, entering, nil, speech.UnitParagraph)

	case *ast.Heading:
		lang := headingLanguage(n)
		if entering && lang != "" {
			b.pushLanguage(lang)
		}
		b.block(n, entering, b.field(n, speech.RoleHeading, true, map[string]string{
			render.AttrLevel: strconv.Itoa(n.Level),
		}), speech.UnitParagraph)
		if !entering && lang != "" {
			b.popLanguage()
		}

	case *ast.List:
		attrs := map[string]string{render.AttrItems: strconv.Itoa(n.ChildCount())}
		if n.IsOrdered() {
			attrs[render.AttrOrdered] = "true"
		}
		b.structural(n, entering, b.field(n, speech.RoleList, true, attrs))

	case *ast.ListItem:
		b.structural(n, entering, b.field(n, speech.RoleListItem, true, nil))

	case *ast.Blockquote:
		b.structural(n, entering, b.field(n, speech.RoleBlockQuote, true, nil))

	case *ast.FencedCodeBlock:
		var attrs map[string]string
		if lang := n.Language(b.source); len(lang) > 0 {
			attrs = map[string]string{"info": string(lang)}
		}
		b.codeBlock(n, entering, attrs)
		return ast.WalkSkipChildren, nil

	case *ast.CodeBlock:
		b.codeBlock(n, entering, nil)
		return ast.WalkSkipChildren, nil

	case *ast.ThematicBreak:
		f := b.field(n, speech.RoleSeparator, true, nil)
		if entering {
			b.enter(n, f)
			b.appendText("\n")
			return ast.WalkContinue, nil
		}
		b.exit(n, speech.UnitParagraph)

	case *ast.Link:
		b.structural(n, entering, b.link(n, string(n.Destination)))

	case *ast.AutoLink:
		b.structural(n, entering, b.link(n, string(n.URL(b.source))))
		if entering {
			b.appendText(string(n.Label(b.source)))
		}
		return ast.WalkSkipChildren, nil

	case *ast.Image:
		b.structural(n, entering, b.field(n, speech.RoleGraphic, false, map[string]string{
			render.AttrAlt: plainText(n, b.source),
			"url":          string(n.Destination),
		}))
		return ast.WalkSkipChildren, nil

	case *ast.Emphasis:
		if n.Level >= 2 {
			b.toggle(&b.bold, entering)
		} else {
			b.toggle(&b.italic, entering)
		}

	case *ast.CodeSpan:
		if tex, ok := mathSource(plainText(n, b.source)); ok {
			b.structural(n, entering, b.field(n, speech.RoleMath, false, map[string]string{render.AttrTeX: tex}))
			return ast.WalkSkipChildren, nil
		}
		b.toggle(&b.code, entering)

	case *extast.Strikethrough:
		b.toggle(&b.strike, entering)

	case *ast.Text:
		if entering {
			b.appendText(string(n.Segment.Value(b.source)))
			if n.SoftLineBreak() || n.HardLineBreak() {
				b.appendText("\n")
			}
		}

	case *ast.String:
		if entering {
			b.appendText(string(n.Value))
		}

	case *extast.Table:
		b.structural(n, entering, b.field(n, speech.RoleTable, true, map[string]string{
			render.AttrRows:    strconv.Itoa(n.ChildCount()),
			render.AttrColumns: strconv.Itoa(len(n.Alignments)),
		}))

	case *extast.TableHeader:
		b.block(n, entering, b.field(n, speech.RoleRow, true, map[string]string{render.AttrHeader: "true"}), speech.UnitParagraph)

	case *extast.TableRow:
		b.block(n, entering, b.field(n, speech.RoleRow, true, nil), speech.UnitParagraph)

	case *extast.TableCell:
		b.cell(n, entering)

	case *ast.RawHTML, *ast.HTMLBlock:
		return ast.WalkSkipChildren, nil
	}
	return ast.WalkContinue, nil
}

// structural emits an enter or exit item for f. A nil field emits nothing.
func (b *treeBuilder) structural(n ast.Node, entering bool, f *speech.Field) {
	if entering {
		b.enter(n, f)
		return
	}
	b.exit(n, speech.UnitNone)
}

// block is structural for fields that end a line and make up a paragraph
// unit.
func (b *treeBuilder) block(n ast.Node, entering bool, f *speech.Field, unit speech.Unit) {
	if entering {
		b.enter(n, f)
		return
	}
	b.endLine()
	b.exit(n, unit)
}

func (b *treeBuilder) codeBlock(n ast.Node, entering bool, attrs map[string]string) {
	if !entering {
		b.endLine()
		b.exit(n, speech.UnitParagraph)
		return
	}
	b.enter(n, b.field(n, speech.RoleCode, true, attrs))
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.appendText(string(seg.Value(b.source)))
	}
}

func (b *treeBuilder) cell(n *extast.TableCell, entering bool) {
	if !entering {
		b.exit(n, speech.UnitCell)
		if n.NextSibling() != nil {
			b.appendText(" ")
		}
		return
	}
	attrs := map[string]string{
		render.AttrColumn: strconv.Itoa(siblingIndex(n) + 1),
		render.AttrRow:    strconv.Itoa(siblingIndex(n.Parent()) + 1),
	}
	if _, ok := n.Parent().(*extast.TableHeader); ok {
		attrs[render.AttrHeader] = "true"
	}
	b.enter(n, b.field(n, speech.RoleCell, false, attrs))
}

func (b *treeBuilder) link(n ast.Node, url string) *speech.Field {
	f := b.field(n, speech.RoleLink, false, map[string]string{"url": url})
	f.States = speech.NewStateSet(speech.StateClickable)
	return f
}

func (b *treeBuilder) enter(n ast.Node, f *speech.Field) {
	b.starts[n] = len(b.text)
	if f == nil {
		return
	}
	b.items = append(b.items, item{kind: speech.EventEnterField, field: f, off: len(b.text)})
}

// exit closes the field opened for n and records its span for unit.
func (b *treeBuilder) exit(n ast.Node, unit speech.Unit) {
	start, ok := b.starts[n]
	delete(b.starts, n)
	if ok && unit != speech.UnitNone && len(b.text) > start {
		b.spans[unit] = append(b.spans[unit], span{start, len(b.text)})
	}
	if _, isTextBlock := n.(*ast.TextBlock); isTextBlock {
		return
	}
	b.items = append(b.items, item{kind: speech.EventExitField})
}

func (b *treeBuilder) appendText(s string) {
	if s == "" {
		return
	}
	r := []rune(s)
	b.items = append(b.items, item{kind: speech.EventText, off: len(b.text), n: len(r)})
	b.text = append(b.text, r...)
}

func (b *treeBuilder) endLine() {
	if len(b.text) == 0 || b.text[len(b.text)-1] != '\n' {
		b.appendText("\n")
	}
}

func (b *treeBuilder) toggle(counter *int, entering bool) {
	if entering {
		*counter++
	} else {
		*counter--
	}
	b.items = append(b.items, item{kind: speech.EventFormatChange, field: b.format()})
}

func (b *treeBuilder) pushLanguage(lang string) {
	b.langs = append(b.langs, lang)
	b.items = append(b.items, item{kind: speech.EventFormatChange, field: b.format()})
}

func (b *treeBuilder) popLanguage() {
	b.langs = b.langs[:len(b.langs)-1]
	b.items = append(b.items, item{kind: speech.EventFormatChange, field: b.format()})
}

// format returns the format field in effect.
func (b *treeBuilder) format() *speech.Field {
	f := &speech.Field{Kind: speech.FieldFormat, Attrs: map[string]string{}}
	for key, n := range map[string]int{
		render.AttrBold:          b.bold,
		render.AttrItalic:        b.italic,
		render.AttrInlineCode:    b.code,
		render.AttrStrikethrough: b.strike,
	} {
		if n > 0 {
			f.Attrs[key] = "true"
		}
	}
	if len(b.langs) > 0 {
		f.Language = b.langs[len(b.langs)-1]
	}
	return f
}

// field creates a structural field whose unique ID is derived from the
// document ID and the node's path in the tree.
func (b *treeBuilder) field(n ast.Node, role speech.Role, block bool, attrs map[string]string) *speech.Field {
	return &speech.Field{
		Kind:     speech.FieldStructural,
		Role:     role,
		UniqueID: nodeID(b.docID, role, n),
		IsBlock:  block,
		Attrs:    attrs,
	}
}

func nodeID(docID string, role speech.Role, n ast.Node) string {
	var path []string
	for c := n; c != nil; c = c.Parent() {
		path = append(path, strconv.Itoa(siblingIndex(c)))
	}
	sum := blake3.Sum256([]byte(docID + "\x00" + string(role) + "\x00" + strings.Join(path, ".")))
	return hex.EncodeToString(sum[:8])
}

func siblingIndex(n ast.Node) int {
	i := 0
	for c := n.PreviousSibling(); c != nil; c = c.PreviousSibling() {
		i++
	}
	return i
}

func headingLanguage(n *ast.Heading) string {
	v, ok := n.AttributeString("lang")
	if !ok {
		return ""
	}
	switch lang := v.(type) {
	case []byte:
		return render.CanonicalLanguage(string(lang))
	case string:
		return render.CanonicalLanguage(lang)
	}
	return ""
}

// plainText concatenates the text below n.
func plainText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
		case *ast.String:
			sb.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

// mathSource returns the TeX inside a code span written as $...$.
func mathSource(s string) (string, bool) {
	if len(s) < 3 || !strings.HasPrefix(s, "$") || !strings.HasSuffix(s, "$") {
		return "", false
	}
	return strings.TrimSpace(s[1 : len(s)-1]), true
}
