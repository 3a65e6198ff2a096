package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/RichardKnop/tinysql/internal/pkg/database"
)

var (
	ErrUnrecognizedStatement = fmt.Errorf("unrecognized statement")
	ErrSyntax                = fmt.Errorf("syntax error")
	ErrNegativeID            = fmt.Errorf("id must be positive")
)

const (
	insertKeyword = "insert"
	selectKeyword = "select"
)

type step int

const (
	stepBeginning step = iota + 1
	stepInsertID
	stepInsertUsername
	stepInsertEmail
	stepDone
)

type parser struct {
	database.Statement
	tokens []string
	i      int // index of the next token
	step   step
}

func New() *parser {
	return new(parser)
}

// Parse turns one line of input into a statement. On error the partially
// parsed statement is returned alongside the error.
func (p *parser) Parse(ctx context.Context, input string) (database.Statement, error) {
	p.reset()

	if err := p.doParse(input); err != nil {
		return p.Statement, err
	}
	if err := p.validate(); err != nil {
		return p.Statement, err
	}

	return p.Statement, nil
}

func (p *parser) reset() {
	p.Statement = database.Statement{}
	p.tokens = nil
	p.i = 0
	p.step = stepBeginning
}

func (p *parser) doParse(input string) error {
	for {
		switch p.step {
		case stepBeginning:
			switch {
			// Anything starting with the keyword is an insert, arguments may
			// follow it without a space
			case strings.HasPrefix(input, insertKeyword):
				p.Kind = database.Insert
				p.tokens = strings.Fields(input[len(insertKeyword):])
				p.step = stepInsertID
			case input == selectKeyword:
				p.Kind = database.Select
				p.step = stepDone
			default:
				return ErrUnrecognizedStatement
			}
		case stepInsertID,
			stepInsertUsername,
			stepInsertEmail:
			if err := p.doParseInsert(); err != nil {
				return err
			}
		case stepDone:
			return nil
		}
	}
}

func (p *parser) validate() error {
	if p.Kind == database.Insert {
		return p.Row.Validate()
	}
	return nil
}

func (p *parser) peek() string {
	if p.i >= len(p.tokens) {
		return ""
	}
	return p.tokens[p.i]
}

func (p *parser) pop() string {
	token := p.peek()
	if p.i < len(p.tokens) {
		p.i += 1
	}
	return token
}
