// Command kvtree is the interactive line-oriented REPL: the CLI
// collaborator spec.md keeps deliberately outside the storage engine
// itself. It reads statements from stdin, hands them to the parser
// package, and drives the engine facade.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"kvtree/common"
	"kvtree/engine"
	"kvtree/parser"
	"kvtree/row"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Must supply a database filename.")
		os.Exit(1)
	}

	e, err := engine.Open(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}

	rl, err := readline.New("db > ")
	if err != nil {
		log.Fatal(err)
	}
	defer rl.Close()

	repl(rl, e)
}

func repl(rl *readline.Instance, e *engine.Engine) {
	for {
		line, err := rl.Readline()
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			if err := e.Close(); err != nil {
				log.Fatal(err)
			}
			return
		}
		if err != nil {
			log.Fatal(err)
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		stmt, err := parser.Parse(line)
		if err != nil {
			printParseError(line, err)
			continue
		}

		if stmt.Kind == parser.KindMeta {
			if handleMeta(rl, e, stmt) {
				return
			}
			continue
		}

		execute(e, stmt)
	}
}

// handleMeta runs a dot-command; it returns true when the REPL should
// exit (i.e. after ".exit").
func handleMeta(rl *readline.Instance, e *engine.Engine, stmt *parser.Statement) bool {
	switch stmt.MetaCommand {
	case ".exit":
		if err := e.Close(); err != nil {
			log.Fatal(err)
		}
		return true
	case ".btree":
		if err := e.PrintTree(os.Stdout); err != nil {
			log.Fatal(err)
		}
	case ".constants":
		printConstants(os.Stdout, e)
	}
	return false
}

func execute(e *engine.Engine, stmt *parser.Statement) {
	switch stmt.Kind {
	case parser.KindInsert:
		r, err := row.New(stmt.InsertID, stmt.InsertUsername, stmt.InsertEmail)
		if err != nil {
			fmt.Println("String is too long.")
			return
		}
		switch err := e.Insert(r); {
		case errors.Is(err, common.ErrDuplicateKey):
			fmt.Println("Error: Duplicate key.")
		case err != nil:
			log.Fatal(err)
		default:
			fmt.Println("Executed.")
		}

	case parser.KindSelect:
		err := e.SelectAll(func(r row.Row) error {
			fmt.Println(r.String())
			return nil
		})
		if err != nil {
			log.Fatal(err)
			return
		}
		fmt.Println("Executed.")

	case parser.KindDelete:
		switch err := e.Delete(stmt.DeleteID); {
		case errors.Is(err, common.ErrKeyNotFound):
			fmt.Println("Error: Key not found.")
		case err != nil:
			log.Fatal(err)
		default:
			fmt.Println("Executed.")
		}
	}
}

func printParseError(line string, err error) {
	switch {
	case errors.Is(err, parser.ErrUnrecognizedCommand):
		fmt.Printf("Unrecognized command: '%s'\n", strings.TrimSpace(line))
	case errors.Is(err, parser.ErrUnrecognizedKeyword):
		fmt.Printf("Unrecognized keyword at start of '%s'.\n", strings.TrimSpace(line))
	case errors.Is(err, parser.ErrInvalidID):
		fmt.Println("ID must be positive.")
	case errors.Is(err, row.ErrStringTooLong):
		fmt.Println("String is too long.")
	default:
		fmt.Println("Syntax error. Could not parse statement.")
	}
}
