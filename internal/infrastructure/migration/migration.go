package migration

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

// Migration represents a database migration
type Migration struct {
	Name string
	Up   func(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error
}

// Migrations lists the schema additions certificates rely on, in order.
func Migrations() []Migration {
	return []Migration{
		addColumn("add_certificate_url_to_applications", "hackathon_applications", "certificate_url TEXT"),
		addColumn("add_certificate_template_to_applications", "hackathon_applications", "certificate_template_id TEXT"),
		addColumn("add_custom_message_to_applications", "hackathon_applications", "custom_message TEXT"),
		addColumn("add_final_rank_to_applications", "hackathon_applications", "final_rank INTEGER"),
		addColumn("add_certificate_url_to_team_members", "hackathon_team_members", "certificate_url TEXT"),
	}
}

// RunMigrations executes all necessary database migrations on startup
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("Starting database migrations")

	for _, m := range Migrations() {
		if err := m.Up(ctx, pool, logger); err != nil {
			logger.Error("Migration failed", zap.String("name", m.Name), zap.Error(err))
			return err
		}
		logger.Info("Migration completed", zap.String("name", m.Name))
	}

	logger.Info("All migrations completed successfully")
	return nil
}

// addColumn adds column to table if it doesn't exist. Failures are logged
// and skipped so one missing upstream table does not block startup.
func addColumn(name, table, column string) Migration {
	return Migration{
		Name: name,
		Up: func(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
			query := `ALTER TABLE ` + table + ` ADD COLUMN IF NOT EXISTS ` + column + `;`
			if _, err := pool.Exec(ctx, query); err != nil {
				logger.Warn("Error adding column (table may be missing)",
					zap.String("table", table), zap.String("column", column), zap.Error(err))
				return nil
			}
			return nil
		},
	}
}
