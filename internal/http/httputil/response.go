package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/auth"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/fault"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/repository"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/service"
)

// ErrorResponse representa o payload padrão de erros para a API: o token
// estável de classificação, a mensagem humana e o detalhe legível por máquina.
type ErrorResponse struct {
	Error  string `json:"error"`
	Kind   string `json:"kind,omitempty"`
	Detail any    `json:"detail,omitempty"`
}

// JSON escreve uma resposta JSON com o status informado.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// RespondJSON responde com JSON (alias para JSON).
func RespondJSON(w http.ResponseWriter, status int, payload any) {
	JSON(w, status, payload)
}

// RespondError responde com uma mensagem de erro padronizada.
func RespondError(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message, Kind: fmt.Sprintf("HTTP_%d", status)})
}

// kindStatus mapeia a taxonomia de erros de domínio para classes HTTP. Este é
// o único ponto do sistema que conhece códigos de transporte.
var kindStatus = map[fault.Kind]int{
	fault.KindValidation:             http.StatusBadRequest,
	fault.KindNegativePrice:          http.StatusBadRequest,
	fault.KindDuplicateSizeVariation: http.StatusBadRequest,
	fault.KindBranchRequired:         http.StatusBadRequest,

	fault.KindAccountSuspended:    http.StatusForbidden,
	fault.KindNotStaff:            http.StatusForbidden,
	fault.KindBranchNotAuthorized: http.StatusForbidden,
	fault.KindPermissionDenied:    http.StatusForbidden,
	fault.KindInvalidCredentials:  http.StatusUnauthorized,

	fault.KindNotFound:       http.StatusNotFound,
	fault.KindRecipeNotFound: http.StatusNotFound,
	fault.KindItemNotFound:   http.StatusNotFound,

	fault.KindTillAlreadyOpen:        http.StatusConflict,
	fault.KindTillNotOpen:            http.StatusConflict,
	fault.KindTillClosed:             http.StatusConflict,
	fault.KindTillBelongsToOther:     http.StatusConflict,
	fault.KindNoOpenTill:             http.StatusConflict,
	fault.KindMenuItemUnavailable:    http.StatusConflict,
	fault.KindTerminalInactive:       http.StatusConflict,
	fault.KindTerminalBranchMismatch: http.StatusConflict,
	fault.KindConflict:               http.StatusConflict,

	fault.KindInsufficientStock:            http.StatusConflict,
	fault.KindIngredientNotStockedAtBranch: http.StatusConflict,

	fault.KindRecipeCycleDetected:             http.StatusBadRequest,
	fault.KindVariantRecipeMismatch:           http.StatusBadRequest,
	fault.KindVariationBelongsToOtherMenuItem: http.StatusBadRequest,

	fault.KindPinLocked:   http.StatusTooManyRequests,
	fault.KindRateLimited: http.StatusTooManyRequests,
}

// Error traduz erros de domínio para respostas HTTP padronizadas. Nada no
// núcleo conhece status HTTP; a tradução inteira acontece aqui.
func Error(w http.ResponseWriter, err error) {
	if err == nil {
		JSON(w, http.StatusOK, map[string]string{"message": "ok"})
		return
	}

	var fe *fault.Error
	if errors.As(err, &fe) {
		status, ok := kindStatus[fe.Kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		JSON(w, status, ErrorResponse{Error: fe.Message, Kind: string(fe.Kind), Detail: fe.Detail})
		return
	}

	status := http.StatusInternalServerError
	message := "erro interno inesperado"

	switch {
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
		message = "registro não encontrado"
	case errors.Is(err, repository.ErrConflict):
		status = http.StatusConflict
		message = "conflito ao processar a requisição"
	case errors.Is(err, repository.ErrStaleState):
		status = http.StatusConflict
		message = "estado desatualizado para a transição"
	case errors.Is(err, auth.ErrInvalidToken):
		status = http.StatusUnauthorized
		message = "token inválido"
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
		message = err.Error()
	default:
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			status = http.StatusBadRequest
			message = "json inválido"
		} else {
			message = err.Error()
		}
	}

	RespondError(w, status, message)
}
