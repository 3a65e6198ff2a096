package parser

import (
	"fmt"
	"math"
	"strconv"

	"github.com/RichardKnop/tinysql/internal/pkg/row"
)

// insertArgs is the number of arguments following the insert keyword.
// Anything after them is ignored.
const insertArgs = 3

func (p *parser) doParseInsert() error {
	switch p.step {
	case stepInsertID:
		// Missing arguments are reported before any argument is validated
		if len(p.tokens) < insertArgs {
			return fmt.Errorf("%w: insert expects %d arguments, got %d", ErrSyntax, insertArgs, len(p.tokens))
		}
		token := p.pop()
		id, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: invalid id %q", ErrSyntax, token)
		}
		if id < 0 {
			return ErrNegativeID
		}
		if id > math.MaxUint32 {
			return fmt.Errorf("%w: id %d out of range", ErrSyntax, id)
		}
		p.Row.ID = uint32(id)
		p.step = stepInsertUsername
	case stepInsertUsername:
		token := p.pop()
		if len(token) > row.UsernameSize {
			return fmt.Errorf("%w: username is %d bytes, max %d", row.ErrStringTooLong, len(token), row.UsernameSize)
		}
		p.Row.Username = token
		p.step = stepInsertEmail
	case stepInsertEmail:
		token := p.pop()
		if len(token) > row.EmailSize {
			return fmt.Errorf("%w: email is %d bytes, max %d", row.ErrStringTooLong, len(token), row.EmailSize)
		}
		p.Row.Email = token
		p.step = stepDone
	}
	return nil
}
