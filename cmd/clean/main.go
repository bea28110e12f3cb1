package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/config"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/database"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/logger"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		os.Exit(1)
	}
}

// Utilitário de manutenção: remove registros de idempotência mais antigos que
// a janela informada no datastore de um tenant. Pedidos e livro de estoque
// nunca são tocados.
func run() error {
	tenantKey := flag.String("tenant", "", "chave do tenant")
	maxAgeDays := flag.Int("max-age-days", 7, "idade máxima dos registros de idempotência")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found or failed to load; using system environment variables if present")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("falha ao carregar configuração: %w", err)
	}
	if strings.TrimSpace(*tenantKey) == "" {
		return fmt.Errorf("-tenant é obrigatório")
	}

	log := logger.New(cfg.App.Env)
	log.Info().Str("tenant", *tenantKey).Msg("Limpando registros de idempotência...")

	ctx := context.Background()
	dsn := strings.ReplaceAll(cfg.TenantDSNTemplate(), "{tenant}", strings.ToLower(strings.TrimSpace(*tenantKey)))
	db, err := database.Connect(ctx, dsn, 2)
	if err != nil {
		return fmt.Errorf("falha ao conectar ao postgres: %w", err)
	}
	defer db.Close()

	store := repository.New(db)
	cutoff := time.Now().UTC().AddDate(0, 0, -*maxAgeDays)
	removed, err := store.PruneClientOps(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("falha ao limpar registros: %w", err)
	}

	log.Info().Int64("removed", removed).Time("cutoff", cutoff).Msg("Limpeza concluída")
	return nil
}
