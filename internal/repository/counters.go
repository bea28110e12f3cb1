package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Chaves de contador vivem em um espaço disjunto por prefixo lógico; pedidos
// usam sempre "ord:" para que nenhum outro esquema colida na mesma tabela.
func orderCounterKey(branchID uuid.UUID, prefix string, day time.Time) string {
	return fmt.Sprintf("ord:%s:%s:%s", branchID, prefix, day.UTC().Format("20060102"))
}

// NextOrderSequence aloca o próximo valor da sequência diária do par
// (filial, prefixo). Upsert atômico: duas transações efetivadas nunca recebem o
// mesmo valor. O incremento roda na transação do chamador e é desfeito junto
// com ela, então um aborto não deixa lacuna.
func (s *Store) NextOrderSequence(ctx context.Context, q querier, branchID uuid.UUID, prefix string, day time.Time) (int64, error) {
	var seq int64
	err := q.QueryRow(ctx, `
		INSERT INTO __counters (scope_key, seq)
		VALUES ($1, 1)
		ON CONFLICT (scope_key) DO UPDATE
		SET seq = __counters.seq + 1
		RETURNING seq
	`, orderCounterKey(branchID, prefix, day)).Scan(&seq)
	if err != nil {
		return 0, translateError(err)
	}
	return seq, nil
}

// FormatOrderNumber monta o número de exibição PREFIX-YYYYMMDD-NNNN; a sequência
// cresce além de quatro dígitos sem truncar.
func FormatOrderNumber(prefix string, day time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, day.UTC().Format("20060102"), seq)
}
