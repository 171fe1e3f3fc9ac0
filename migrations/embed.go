// Package migrations embeds the SQL schema files so the binary can migrate
// without the files on disk.
package migrations

import (
	"embed"

	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/database"
)

//go:embed *.sql
var files embed.FS

func init() {
	database.MigrationsFS = files
	database.MigrationsDir = "."
}
