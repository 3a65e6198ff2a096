package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/RichardKnop/tinysql/internal/pkg/database"
	"github.com/RichardKnop/tinysql/internal/pkg/parser"
	"github.com/RichardKnop/tinysql/internal/pkg/row"
	"github.com/RichardKnop/tinysql/internal/pkg/table"
	"github.com/RichardKnop/tinysql/internal/pkg/util"
)

const (
	prompt       = "db > "
	maxLineBytes = 1024 * 1024
)

type Database interface {
	PrepareStatement(context.Context, string) (database.Statement, error)
	ExecuteStatement(context.Context, database.Statement) (database.StatementResult, error)
	PrintTree(context.Context, io.Writer) error
	Close(context.Context) error
}

type metaCommand int

const (
	Unknown metaCommand = iota + 1
	Help
	Exit
	BTree
	Constants
)

func isMetaCommand(input string) bool {
	return len(input) > 0 && input[:1] == "."
}

func doMetaCommand(input string) metaCommand {
	switch input {
	case "help":
		return Help
	case "exit":
		return Exit
	case "btree":
		return BTree
	case "constants":
		return Constants
	default:
		return Unknown
	}
}

// REPL reads one statement or meta command per line and prints the result
// after it. Lines are processed under a lock so Shutdown can be called from
// a signal handler while Run is active.
type REPL struct {
	db     Database
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
}

func New(logger *zap.Logger, aDatabase Database) *REPL {
	return &REPL{
		db:     aDatabase,
		logger: logger,
	}
}

// Run processes input until .exit, end of input or a fatal error. The
// database is closed before Run returns.
func (r *REPL) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)

	for {
		fmt.Fprint(out, prompt)

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return multierr.Append(fmt.Errorf("error reading input: %w", err), r.Shutdown(ctx))
			}
			// Print an additional line if we encountered an EOF character
			fmt.Fprintln(out)
			return r.Shutdown(ctx)
		}

		exit, err := r.handleLine(ctx, strings.TrimRight(scanner.Text(), "\r"), out)
		if err != nil {
			return multierr.Append(err, r.Shutdown(ctx))
		}
		if exit {
			return r.Shutdown(ctx)
		}
	}
}

// Shutdown closes the database once, later calls are no-ops.
func (r *REPL) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	r.logger.Debug("closing database")

	return r.db.Close(ctx)
}

func (r *REPL) handleLine(ctx context.Context, input string, out io.Writer) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return true, nil
	}

	if isMetaCommand(input) {
		return r.handleMetaCommand(ctx, input, out)
	}

	return false, r.handleStatement(ctx, input, out)
}

func (r *REPL) handleMetaCommand(ctx context.Context, input string, out io.Writer) (bool, error) {
	switch doMetaCommand(input[1:]) {
	case Exit:
		return true, nil
	case Help:
		fmt.Fprintln(out, ".help       - Show available commands")
		fmt.Fprintln(out, ".exit       - Close the database and exit")
		fmt.Fprintln(out, ".btree      - Print the B-tree")
		fmt.Fprintln(out, ".constants  - Print node layout constants")
	case BTree:
		fmt.Fprintln(out, "Tree:")
		if err := r.db.PrintTree(ctx, out); err != nil {
			return false, err
		}
	case Constants:
		fmt.Fprintln(out, "Constants:")
		if err := util.PrintConstants(out); err != nil {
			return false, err
		}
	case Unknown:
		fmt.Fprintf(out, "Unrecognized command '%s'\n", input)
	}
	return false, nil
}

func (r *REPL) handleStatement(ctx context.Context, input string, out io.Writer) error {
	stmt, err := r.db.PrepareStatement(ctx, input)
	if err != nil {
		switch {
		case errors.Is(err, parser.ErrNegativeID):
			fmt.Fprintln(out, "ID must be positive.")
		case errors.Is(err, row.ErrStringTooLong):
			fmt.Fprintln(out, "String is too long.")
		case errors.Is(err, parser.ErrUnrecognizedStatement):
			fmt.Fprintf(out, "Unrecognized keyword at start of '%s'.\n", input)
		default:
			fmt.Fprintln(out, "Syntax error. Could not parse statement.")
		}
		return nil
	}

	aResult, err := r.db.ExecuteStatement(ctx, stmt)
	if err != nil {
		switch {
		case errors.Is(err, table.ErrDuplicateKey):
			fmt.Fprintln(out, "Error: Duplicate key.")
		case errors.Is(err, table.ErrTableFull):
			fmt.Fprintln(out, "Error: Table full.")
		case database.IsFatal(err):
			r.logger.Sugar().With("statement", stmt.Kind.String(), "error", err).Error("fatal error executing statement")
			return err
		default:
			fmt.Fprintf(out, "Error: %s.\n", err)
		}
		return nil
	}

	if stmt.Kind == database.Select {
		if err := util.PrintRows(out, aResult.Rows); err != nil {
			return err
		}
	}
	fmt.Fprintln(out, "Executed.")

	return nil
}
