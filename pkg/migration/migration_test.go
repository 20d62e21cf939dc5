package migration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sincro/backoffice/pkg/database"
)

type widget struct {
	ID   int64
	Name string
}

type gadget struct {
	ID int64
}

type createTable struct {
	model any
	name  string
}

func (m createTable) Up(db *gorm.DB) error   { return db.AutoMigrate(m.model) }
func (m createTable) Down(db *gorm.DB) error { return db.Migrator().DropTable(m.name) }

func TestRunRollbackStatus(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)

	first := Entry{Name: "20240101000000_create_widgets", Migration: createTable{&widget{}, "widgets"}}
	second := Entry{Name: "20240102000000_create_gadgets", Migration: createTable{&gadget{}, "gadgets"}}

	n, err := NewWith(db, nil, first).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	r := NewWith(db, nil, second, first)
	n, err = r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, db.Migrator().HasTable("gadgets"))

	states, err := r.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, []State{
		{Name: first.Name, Ran: true, Batch: 1},
		{Name: second.Name, Ran: true, Batch: 2},
	}, states)

	n, err = r.Rollback(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, db.Migrator().HasTable("gadgets"))
	assert.True(t, db.Migrator().HasTable("widgets"))

	n, err = r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	states, _ = r.Status(ctx)
	assert.Equal(t, 2, states[1].Batch)
}

func TestRollbackEmpty(t *testing.T) {
	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	n, err := NewWith(db, nil).Rollback(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
