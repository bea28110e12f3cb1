package repository

import "errors"

var (
	// ErrNotFound indica que um registro não foi localizado.
	ErrNotFound = errors.New("registro não encontrado")

	// ErrConflict indica violação de unicidade ou conflito de estado.
	ErrConflict = errors.New("registro em conflito")

	// ErrStaleState indica que uma transição de estado não encontrou o estado
	// de origem esperado (ex.: fechar caixa já fechado).
	ErrStaleState = errors.New("estado desatualizado para a transição")
)
