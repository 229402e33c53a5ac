package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yungbote/roadmapper-backend/internal/logger"
	"github.com/yungbote/roadmapper-backend/internal/types"
	"github.com/yungbote/roadmapper-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "roadmapper", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	serviceLog.Info("Connecting to Postgres...")
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &PostgresService{db: gormDB, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := s.db.AutoMigrate(AllModels()...); err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	s.log.Info("Configuring foreign key relationships for postgres tables...")
	constraints := []struct {
		name string
		ddl  string
	}{
		{"fk_user_token_user_id", `ALTER TABLE "user_token" ADD CONSTRAINT "fk_user_token_user_id" FOREIGN KEY ("user_id") REFERENCES "user"("id") ON DELETE CASCADE`},
		{"fk_project_user_id", `ALTER TABLE "project" ADD CONSTRAINT "fk_project_user_id" FOREIGN KEY ("user_id") REFERENCES "user"("id") ON DELETE CASCADE`},
		{"fk_module_project_id", `ALTER TABLE "module" ADD CONSTRAINT "fk_module_project_id" FOREIGN KEY ("project_id") REFERENCES "project"("id") ON DELETE CASCADE`},
		{"fk_module_parent_module_id", `ALTER TABLE "module" ADD CONSTRAINT "fk_module_parent_module_id" FOREIGN KEY ("parent_module_id") REFERENCES "module"("id") ON DELETE CASCADE`},
		{"fk_task_module_id", `ALTER TABLE "task" ADD CONSTRAINT "fk_task_module_id" FOREIGN KEY ("module_id") REFERENCES "module"("id") ON DELETE CASCADE`},
		{"fk_question_project_id", `ALTER TABLE "question" ADD CONSTRAINT "fk_question_project_id" FOREIGN KEY ("project_id") REFERENCES "project"("id") ON DELETE CASCADE`},
		{"fk_answer_question_id", `ALTER TABLE "answer" ADD CONSTRAINT "fk_answer_question_id" FOREIGN KEY ("question_id") REFERENCES "question"("id") ON DELETE CASCADE`},
	}
	for _, c := range constraints {
		exists := s.db.Exec(fmt.Sprintf(`
			DO $$ BEGIN
				IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
					%s;
				END IF;
			END $$;
		`, c.name, c.ddl))
		if exists.Error != nil {
			return fmt.Errorf("failed to add %s: %w", c.name, exists.Error)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}

// AllModels lists every table in migration order; shared with the sqlite test
// bootstrap.
func AllModels() []any {
	return []any{
		&types.User{},
		&types.UserToken{},
		&types.Project{},
		&types.Module{},
		&types.Task{},
		&types.Question{},
		&types.Answer{},
	}
}
