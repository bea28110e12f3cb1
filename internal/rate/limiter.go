package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter implementa rate limiting e bloqueio de tentativas baseado em Redis.
type Limiter struct {
	client *redis.Client
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

// Allow valida se ainda há crédito disponível para a chave informada.
func (l *Limiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	script := redis.NewScript(`
	local current
	current = redis.call('INCR', KEYS[1])
	if tonumber(current) == 1 then
	  redis.call('PEXPIRE', KEYS[1], ARGV[2])
	end
	if tonumber(current) > tonumber(ARGV[1]) then
	  return 0
	end
	return tonumber(current)
	`)

	ms := window.Milliseconds()
	result, err := script.Run(ctx, l.client, []string{fmt.Sprintf("rate:%s", key)}, limit, ms).Result()
	if err != nil {
		return false, err
	}

	allowed, ok := result.(int64)
	if !ok {
		return false, nil
	}

	return allowed > 0, nil
}

// RegisterFailure contabiliza uma falha consecutiva e devolve se a chave ficou
// bloqueada. Cada falha renova a janela de bloqueio.
func (l *Limiter) RegisterFailure(ctx context.Context, key string, maxAttempts int, lockWindow time.Duration) (locked bool, err error) {
	script := redis.NewScript(`
	local current = redis.call('INCR', KEYS[1])
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
	if tonumber(current) >= tonumber(ARGV[1]) then
	  return 1
	end
	return 0
	`)

	result, err := script.Run(ctx, l.client, []string{fmt.Sprintf("lock:%s", key)}, maxAttempts, lockWindow.Milliseconds()).Result()
	if err != nil {
		return false, err
	}

	flag, ok := result.(int64)
	return ok && flag == 1, nil
}

// IsLocked verifica se a chave está bloqueada no momento.
func (l *Limiter) IsLocked(ctx context.Context, key string, maxAttempts int) (bool, error) {
	count, err := l.client.Get(ctx, fmt.Sprintf("lock:%s", key)).Int()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	return count >= maxAttempts, nil
}

// ResetFailures zera as falhas após uma autenticação bem sucedida.
func (l *Limiter) ResetFailures(ctx context.Context, key string) error {
	return l.client.Del(ctx, fmt.Sprintf("lock:%s", key)).Err()
}
