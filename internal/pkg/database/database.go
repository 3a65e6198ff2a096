package database

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/RichardKnop/tinysql/internal/pkg/row"
	"github.com/RichardKnop/tinysql/internal/pkg/table"
)

var errUnrecognizedStatementKind = fmt.Errorf("unrecognised statement kind")

type StatementKind int

const (
	Insert StatementKind = iota + 1
	Select
)

func (k StatementKind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Select:
		return "select"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

type Statement struct {
	Kind StatementKind
	Row  row.Row // only used by insert
}

type StatementResult struct {
	Rows         []row.Row
	RowsAffected int
}

type Parser interface {
	Parse(context.Context, string) (Statement, error)
}

type Table interface {
	Insert(context.Context, row.Row) error
	Scan(context.Context) ([]row.Row, error)
	PrintTree(context.Context, io.Writer) error
	Close(context.Context) error
}

// PrepareError wraps anything the parser rejected. It is never fatal.
type PrepareError struct {
	Input string
	Err   error
}

func (e *PrepareError) Error() string {
	return e.Err.Error()
}

func (e *PrepareError) Unwrap() error {
	return e.Err
}

type Database struct {
	Name   string
	parser Parser
	table  Table
	logger *zap.Logger
}

func New(logger *zap.Logger, name string, aParser Parser, aTable Table) *Database {
	return &Database{
		Name:   name,
		parser: aParser,
		table:  aTable,
		logger: logger,
	}
}

// PrepareStatement parses a single line of input into a Statement
func (d *Database) PrepareStatement(ctx context.Context, input string) (Statement, error) {
	stmt, err := d.parser.Parse(ctx, input)
	if err != nil {
		return Statement{}, &PrepareError{Input: input, Err: err}
	}
	return stmt, nil
}

func (d *Database) ExecuteStatement(ctx context.Context, stmt Statement) (StatementResult, error) {
	switch stmt.Kind {
	case Insert:
		return d.executeInsert(ctx, stmt)
	case Select:
		return d.executeSelect(ctx, stmt)
	}
	return StatementResult{}, errUnrecognizedStatementKind
}

func (d *Database) executeInsert(ctx context.Context, stmt Statement) (StatementResult, error) {
	if err := d.table.Insert(ctx, stmt.Row); err != nil {
		d.logger.Sugar().With(
			"id", int(stmt.Row.ID),
			"error", err,
		).Debug("insert failed")
		return StatementResult{}, err
	}
	return StatementResult{RowsAffected: 1}, nil
}

func (d *Database) executeSelect(ctx context.Context, stmt Statement) (StatementResult, error) {
	rows, err := d.table.Scan(ctx)
	if err != nil {
		return StatementResult{}, err
	}
	return StatementResult{Rows: rows}, nil
}

func (d *Database) PrintTree(ctx context.Context, w io.Writer) error {
	return d.table.PrintTree(ctx, w)
}

func (d *Database) Close(ctx context.Context) error {
	d.logger.Sugar().With("name", d.Name).Debug("closing database")
	return d.table.Close(ctx)
}

// IsFatal reports whether err leaves the database in a state where it
// should not be used anymore. Rejected input and execution errors such as
// a duplicate key are not fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var prepareErr *PrepareError
	switch {
	case errors.As(err, &prepareErr):
		return false
	case errors.Is(err, table.ErrDuplicateKey),
		errors.Is(err, table.ErrTableFull),
		errors.Is(err, row.ErrStringTooLong),
		errors.Is(err, row.ErrInvalidString):
		return false
	}

	return true
}
