package export

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"

	"auxchat_backend/database"
	"auxchat_backend/internal/models"
)

func TestLiteral(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	assert.Equal(t, "NULL", Literal(nil))
	assert.Equal(t, "TRUE", Literal(true))
	assert.Equal(t, "FALSE", Literal(false))
	assert.Equal(t, "42", Literal(int64(42)))
	assert.Equal(t, "55.75", Literal(55.75))
	assert.Equal(t, "'2025-01-02T03:04:05Z'", Literal(ts))
	assert.Equal(t, "'it''s'", Literal("it's"))
	assert.Equal(t, "'{\"a\":1}'", Literal([]byte(`{"a":1}`)))
}

func TestTablesCoverAllModels(t *testing.T) {
	cache := &sync.Map{}
	var names []string
	for _, m := range models.AllModels() {
		s, err := schema.Parse(m, cache, schema.NamingStrategy{})
		require.NoError(t, err)
		names = append(names, s.Table)
	}
	assert.ElementsMatch(t, names, Tables)
}

func TestDump(t *testing.T) {
	db, err := database.OpenInMemory("export_" + uuid.NewString()[:8])
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	phone := "+79005555555"
	user := &models.User{Phone: &phone, Username: "O'Brien", PasswordHash: "x", Energy: 100}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&models.Message{UserID: user.ID, Text: "привет"}).Error)

	var buf bytes.Buffer
	stats, err := Dump(context.Background(), sqlDB, &buf, Tables, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, stats["users"])
	assert.Equal(t, 1, stats["messages"])
	assert.Equal(t, 0, stats["payments"])

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "-- AuxChat data export"))
	assert.Contains(t, out, `INSERT INTO "users"`)
	assert.Contains(t, out, "'O''Brien'")
	assert.Contains(t, out, "'привет'")
	assert.True(t, strings.HasSuffix(out, "COMMIT;\n"))
	// пользователи выгружаются раньше сообщений
	assert.Less(t, strings.Index(out, `INSERT INTO "users"`), strings.Index(out, `INSERT INTO "messages"`))
}
