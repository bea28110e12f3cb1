package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/config"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/database"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/logger"
)

const migrationTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version VARCHAR(255) PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		os.Exit(1)
	}
}

// A ferramenta migra o banco principal (-scope main) ou o banco isolado de um
// tenant (-scope tenant -tenant <chave>). Os diretórios migrations/main e
// migrations/tenant carregam DDLs separados.
func run() error {
	scope := flag.String("scope", "tenant", "escopo da migração: main ou tenant")
	tenantKey := flag.String("tenant", "", "chave do tenant (obrigatória com -scope tenant)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found or failed to load; using system environment variables if present")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("falha ao carregar configuração: %w", err)
	}

	log := logger.New(cfg.App.Env)

	var dsn, dir string
	switch *scope {
	case "main":
		dsn = cfg.MainDSN()
		dir = filepath.Join(cfg.Database.MigrationsDir, "main")
	case "tenant":
		if strings.TrimSpace(*tenantKey) == "" {
			return fmt.Errorf("-tenant é obrigatório com -scope tenant")
		}
		dsn = strings.ReplaceAll(cfg.TenantDSNTemplate(), "{tenant}", strings.ToLower(strings.TrimSpace(*tenantKey)))
		dir = filepath.Join(cfg.Database.MigrationsDir, "tenant")
	default:
		return fmt.Errorf("escopo desconhecido: %s", *scope)
	}

	log.Info().Str("scope", *scope).Str("dir", dir).Msg("Iniciando migration tool")

	ctx := context.Background()
	db, err := database.Connect(ctx, dsn, 5)
	if err != nil {
		return fmt.Errorf("falha ao conectar ao postgres: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(ctx, migrationTable); err != nil {
		return fmt.Errorf("falha ao criar tabela de migrations: %w", err)
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("falha ao ler diretório de migrations: %w", err)
	}

	var migrations []string
	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), ".up.sql") {
			migrations = append(migrations, file.Name())
		}
	}
	sort.Strings(migrations)

	if len(migrations) == 0 {
		log.Info().Msg("Nenhuma migration encontrada")
		return nil
	}

	rows, err := db.Query(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return fmt.Errorf("falha ao buscar migrations aplicadas: %w", err)
	}

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			rows.Close()
			return fmt.Errorf("falha ao ler migration aplicada: %w", err)
		}
		applied[version] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("erro ao iterar migrations aplicadas: %w", err)
	}

	appliedCount := 0
	for _, migration := range migrations {
		version := strings.TrimSuffix(migration, ".up.sql")
		if applied[version] {
			log.Debug().Str("migration", version).Msg("Migration já aplicada")
			continue
		}

		log.Info().Str("migration", version).Msg("Aplicando migration...")

		sqlBytes, err := os.ReadFile(filepath.Join(dir, migration))
		if err != nil {
			return fmt.Errorf("falha ao ler migration %s: %w", migration, err)
		}

		tx, err := db.Begin(ctx)
		if err != nil {
			return fmt.Errorf("falha ao iniciar transação: %w", err)
		}
		if _, err := tx.Exec(ctx, string(sqlBytes)); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("falha ao executar migration %s: %w", migration, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("falha ao registrar migration %s: %w", migration, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("falha ao commitar migration %s: %w", migration, err)
		}

		appliedCount++
	}

	log.Info().Int("applied", appliedCount).Msg("Migrations concluídas")
	return nil
}
