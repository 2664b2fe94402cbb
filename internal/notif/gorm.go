package notif

import (
	"fmt"
	"reflect"

	"gorm.io/gorm"
)

// WatchTables makes every successful create, update and delete on the
// listed tables publish a Change. keys maps a table to the columns copied
// into Change.Row.
func (h *Hub) WatchTables(db *gorm.DB, keys map[string][]string) error {
	callbacks := db.Callback()

	if err := callbacks.Create().After("gorm:create").Register("claridx:notify_create", h.afterWrite(OpInsert, keys)); err != nil {
		return fmt.Errorf("register create callback: %w", err)
	}
	if err := callbacks.Update().After("gorm:update").Register("claridx:notify_update", h.afterWrite(OpUpdate, keys)); err != nil {
		return fmt.Errorf("register update callback: %w", err)
	}
	if err := callbacks.Delete().After("gorm:delete").Register("claridx:notify_delete", h.afterWrite(OpDelete, keys)); err != nil {
		return fmt.Errorf("register delete callback: %w", err)
	}
	return nil
}

func (h *Hub) afterWrite(op Op, keys map[string][]string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		if tx.Error != nil || tx.Statement == nil || tx.RowsAffected == 0 {
			return
		}

		table := tx.Statement.Table
		columns, watched := keys[table]
		if !watched {
			return
		}

		rows := rowKeys(tx.Statement, columns)
		if len(rows) == 0 {
			h.Publish(tx.Statement.Context, Change{Table: table, Op: op})
			return
		}
		for _, row := range rows {
			h.Publish(tx.Statement.Context, Change{Table: table, Op: op, Row: row})
		}
	}
}

func rowKeys(stmt *gorm.Statement, columns []string) []map[string]string {
	if stmt.Schema == nil || !stmt.ReflectValue.IsValid() {
		return nil
	}

	var values []reflect.Value
	rv := reflect.Indirect(stmt.ReflectValue)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			values = append(values, reflect.Indirect(rv.Index(i)))
		}
	case reflect.Struct:
		values = append(values, rv)
	default:
		return nil
	}

	rows := make([]map[string]string, 0, len(values))
	for _, v := range values {
		row := make(map[string]string, len(columns))
		for _, column := range columns {
			field := stmt.Schema.LookUpField(column)
			if field == nil {
				continue
			}
			value, zero := field.ValueOf(stmt.Context, v)
			if zero {
				continue
			}
			row[column] = formatValue(value)
		}
		if len(row) == 0 {
			// one unidentified row makes the whole write a table-wide change
			return nil
		}
		rows = append(rows, row)
	}
	return rows
}

func formatValue(value interface{}) string {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	return fmt.Sprint(rv.Interface())
}
