// Package parser turns one line of REPL input into a typed Statement.
// Keyword recognition and dot-command dispatch happen before handing the
// whole line to a participle grammar, so the three distinct failure
// modes (unrecognized keyword, unrecognized dot-command, malformed
// statement) stay distinguishable.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"kvtree/row"
)

// Kind identifies which statement a parsed line holds.
type Kind int

const (
	KindInsert Kind = iota
	KindSelect
	KindDelete
	KindMeta
)

// Statement is the validated, typed result of parsing one line.
type Statement struct {
	Kind Kind

	InsertID       uint32
	InsertUsername string
	InsertEmail    string

	DeleteID uint32

	MetaCommand string // e.g. ".exit", verbatim as typed
}

var (
	// ErrUnrecognizedKeyword means the line didn't start with insert,
	// select, delete, or a dot.
	ErrUnrecognizedKeyword = errors.New("unrecognized keyword")

	// ErrUnrecognizedCommand means the line started with a dot but
	// isn't a command this build knows.
	ErrUnrecognizedCommand = errors.New("unrecognized command")

	// ErrSyntax means the keyword was recognized but the rest of the
	// line doesn't fit that statement's shape.
	ErrSyntax = errors.New("syntax error")

	// ErrInvalidID means an id field parsed but was not a positive integer.
	ErrInvalidID = errors.New("id must be positive")
)

var knownMetaCommands = map[string]bool{
	".exit":      true,
	".btree":     true,
	".constants": true,
}

// grammar is the participle-driven shape check for the three SQL-ish
// statements, once the keyword itself has already been recognized.
type grammar struct {
	Insert *insertArgs `"insert" @@`
	Select bool        `| @"select"`
	Delete *deleteArgs `| "delete" @@`
}

type insertArgs struct {
	ID       string `@Ident`
	Username string `@Ident`
	Email    string `@Ident`
}

type deleteArgs struct {
	ID string `@Ident`
}

var statementLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ident", Pattern: `\S+`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var statementParser = participle.MustBuild[grammar](
	participle.Lexer(statementLexer),
	participle.Elide("Whitespace"),
)

// Parse validates and classifies one line of REPL input.
func Parse(line string) (*Statement, error) {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, ".") {
		return parseMeta(trimmed)
	}

	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrSyntax, line)
	}
	switch fields[0] {
	case "insert", "select", "delete":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnrecognizedKeyword, line)
	}

	g, err := statementParser.ParseString("", trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrSyntax, line)
	}

	switch {
	case g.Insert != nil:
		return buildInsert(g.Insert)
	case g.Delete != nil:
		return buildDelete(g.Delete)
	default:
		return &Statement{Kind: KindSelect}, nil
	}
}

func parseMeta(trimmed string) (*Statement, error) {
	name := strings.Fields(trimmed)[0]
	if !knownMetaCommands[name] {
		return nil, fmt.Errorf("%w: %q", ErrUnrecognizedCommand, trimmed)
	}
	return &Statement{Kind: KindMeta, MetaCommand: name}, nil
}

func buildInsert(a *insertArgs) (*Statement, error) {
	id, err := parsePositiveID(a.ID)
	if err != nil {
		return nil, err
	}
	if len(a.Username) > row.UsernameColumnSize || len(a.Email) > row.EmailColumnSize {
		return nil, row.ErrStringTooLong
	}
	return &Statement{
		Kind:           KindInsert,
		InsertID:       id,
		InsertUsername: a.Username,
		InsertEmail:    a.Email,
	}, nil
}

func buildDelete(a *deleteArgs) (*Statement, error) {
	id, err := parsePositiveID(a.ID)
	if err != nil {
		return nil, err
	}
	return &Statement{Kind: KindDelete, DeleteID: id}, nil
}

func parsePositiveID(s string) (uint32, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrInvalidID
	}
	if n > int64(^uint32(0)) {
		return 0, ErrInvalidID
	}
	return uint32(n), nil
}
