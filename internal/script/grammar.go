package script

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// File is a parsed script.
type File struct {
	Statements []*Statement `@@*`
}

// Statement switches the document or runs a query against it.
type Statement struct {
	Document *DocumentDecl `  @@`
	Query    *QueryDecl    `| @@`
}

// DocumentDecl starts a new document. Later queries run against it.
type DocumentDecl struct {
	Pos lexer.Position

	Settings []*Setting `"document" @@*`
}

// QueryDecl is one query and the event stream its position yields.
type QueryDecl struct {
	Pos lexer.Position

	Settings []*Setting `"query" @@*`
	Events   []*Node    `"{" @@* "}"`
}

// Node is one event, or a field with its body.
type Node struct {
	Pos lexer.Position

	Text   *string     `  @String`
	Enter  *EnterDecl  `| @@`
	Format *FormatDecl `| @@`
	Exit   bool        `| @"exit"`
}

// EnterDecl opens a structural field.
type EnterDecl struct {
	Role     string     `"enter" @Word`
	Settings []*Setting `@@*`
	HasBody  bool       `( @"{"`
	Body     []*Node    `  @@* "}" )?`
}

// FormatDecl is a format change.
type FormatDecl struct {
	Settings []*Setting `"format" @@*`
}

// Setting is a key=value pair.
type Setting struct {
	Pos lexer.Position

	Key   string `@Word "="`
	Value string `@(Word | String)`
}

var scriptLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\r\n]*`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Word", Pattern: `[a-zA-Z0-9_][a-zA-Z0-9_\-.:/,+]*`},
	{Name: "Punct", Pattern: `[{}=]`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})

var scriptParser = participle.MustBuild[File](
	participle.Lexer(scriptLexer),
	participle.Elide("Comment", "Whitespace"),
	participle.Unquote("String"),
	participle.UseLookahead(2),
)
