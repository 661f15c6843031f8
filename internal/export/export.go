package export

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Tables - все таблицы в порядке, безопасном для внешних ключей при импорте
var Tables = []string{
	"users",
	"messages",
	"reactions",
	"private_messages",
	"subscriptions",
	"blacklist",
	"user_photos",
	"sms_codes",
	"payments",
	"uploads",
}

// Stats - сколько строк выгружено по каждой таблице
type Stats map[string]int

// Dump пишет INSERT для каждой строки каждой таблицы
func Dump(ctx context.Context, db *sql.DB, w io.Writer, tables []string, now time.Time) (Stats, error) {
	stats := make(Stats, len(tables))

	header := []string{
		"-- AuxChat data export",
		"-- Generated: " + now.UTC().Format(time.RFC3339),
		"-- Идентификаторы UUID, последовательности не используются",
		"SET client_encoding = 'UTF8';",
		"BEGIN;",
		"",
	}
	if _, err := io.WriteString(w, strings.Join(header, "\n")+"\n"); err != nil {
		return nil, err
	}

	for _, table := range tables {
		n, err := dumpTable(ctx, db, w, table)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", table, err)
		}
		stats[table] = n
	}

	if _, err := io.WriteString(w, "COMMIT;\n"); err != nil {
		return nil, err
	}
	return stats, nil
}

func dumpTable(ctx context.Context, db *sql.DB, w io.Writer, table string) (int, error) {
	quoted := pq.QuoteIdentifier(table)
	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoted+" ORDER BY id")
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return 0, err
	}
	quotedColumns := make([]string, len(columns))
	for i, c := range columns {
		quotedColumns[i] = pq.QuoteIdentifier(c)
	}
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES (", quoted, strings.Join(quotedColumns, ", "))

	if _, err := fmt.Fprintf(w, "\n-- %s\n", table); err != nil {
		return 0, err
	}

	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	count := 0
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return count, err
		}
		literals := make([]string, len(values))
		for i, v := range values {
			literals[i] = Literal(v)
		}
		if _, err := io.WriteString(w, prefix+strings.Join(literals, ", ")+");\n"); err != nil {
			return count, err
		}
		count++
	}
	return count, rows.Err()
}

// Literal - SQL литерал для значения, считанного из database/sql
func Literal(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return pq.QuoteLiteral(val.UTC().Format(time.RFC3339Nano))
	case []byte:
		return pq.QuoteLiteral(string(val))
	case string:
		return pq.QuoteLiteral(val)
	default:
		return pq.QuoteLiteral(fmt.Sprint(val))
	}
}
