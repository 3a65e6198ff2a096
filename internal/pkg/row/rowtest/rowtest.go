package rowtest

import (
	"github.com/brianvoe/gofakeit/v6"

	"github.com/RichardKnop/tinysql/internal/pkg/row"
)

type DataGen struct {
	*gofakeit.Faker
}

func NewDataGen(seed int64) *DataGen {
	g := DataGen{
		Faker: gofakeit.New(seed),
	}

	return &g
}

// Row returns a random row with the given key.
func (g *DataGen) Row(id uint32) row.Row {
	return row.Row{
		ID:       id,
		Username: truncate(g.Username(), row.UsernameSize),
		Email:    truncate(g.Email(), row.EmailSize),
	}
}

// Rows returns number rows with unique random keys, in random order.
func (g *DataGen) Rows(number int) []row.Row {
	// Make sure all rows will have unique ID, this is important in some tests
	idMap := map[uint32]struct{}{}
	rows := make([]row.Row, 0, number)
	for len(rows) < number {
		id := g.Uint32()
		if _, ok := idMap[id]; ok {
			continue
		}
		idMap[id] = struct{}{}
		rows = append(rows, g.Row(id))
	}
	return rows
}

// SequentialRows returns rows with keys from first to first+number-1 ascending.
func (g *DataGen) SequentialRows(first uint32, number int) []row.Row {
	rows := make([]row.Row, 0, number)
	for i := 0; i < number; i++ {
		rows = append(rows, g.Row(first+uint32(i)))
	}
	return rows
}

// MaxRow returns a row with both text fields filled to capacity.
func (g *DataGen) MaxRow(id uint32) row.Row {
	return row.Row{
		ID:       id,
		Username: g.LetterN(row.UsernameSize),
		Email:    g.LetterN(row.EmailSize),
	}
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
