package postgresengine

import (
	"context"
	_ "embed"
)

//go:embed schema.sql
var schemaSQL string

// CreateSchema creates tables and indexes if they do not exist yet. It is safe to call on every
// start.
func (l *Library) CreateSchema(ctx context.Context) error {
	ctx, observer := l.startOperation(ctx, operationCreateSchema, nil)

	_, err := l.exec(ctx, l.db, logActionCreateSchema, schemaSQL)

	observer.finish(err, nil)

	return err
}

// Schema returns the DDL that CreateSchema executes.
func Schema() string {
	return schemaSQL
}
