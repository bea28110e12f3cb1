// Package fault define a taxonomia de erros de domínio do núcleo POS.
// Cada erro carrega um token estável (Kind), uma mensagem humana e um payload
// opcional legível por máquina. Nenhuma camada do núcleo traduz para status de
// transporte; essa tradução acontece somente no handler mais externo.
package fault

import (
	"errors"
	"fmt"
)

// Kind é o token estável que classifica um erro de domínio.
type Kind string

const (
	// Validação (entrada malformada, valores fora de faixa)
	KindValidation            Kind = "Validation"
	KindNegativePrice         Kind = "NegativePrice"
	KindDuplicateSizeVariation Kind = "DuplicateSizeVariation"
	KindBranchRequired        Kind = "BranchRequired"

	// Autorização
	KindAccountSuspended    Kind = "AccountSuspended"
	KindNotStaff            Kind = "NotStaff"
	KindBranchNotAuthorized Kind = "BranchNotAuthorized"
	KindInvalidCredentials  Kind = "InvalidCredentials"
	KindPermissionDenied    Kind = "PermissionDenied"

	// Recurso não encontrado
	KindNotFound       Kind = "NotFound"
	KindRecipeNotFound Kind = "RecipeNotFound"
	KindItemNotFound   Kind = "ItemNotFound"

	// Conflito de estado
	KindTillAlreadyOpen        Kind = "TillAlreadyOpen"
	KindTillNotOpen            Kind = "TillNotOpen"
	KindTillClosed             Kind = "TillClosed"
	KindTillBelongsToOther     Kind = "TillBelongsToOther"
	KindNoOpenTill             Kind = "NoOpenTill"
	KindMenuItemUnavailable    Kind = "MenuItemUnavailable"
	KindTerminalInactive       Kind = "TerminalInactive"
	KindTerminalBranchMismatch Kind = "TerminalBranchMismatch"
	KindConflict               Kind = "Conflict"

	// Conflito de estoque
	KindInsufficientStock          Kind = "InsufficientStock"
	KindIngredientNotStockedAtBranch Kind = "IngredientNotStockedAtBranch"

	// Integridade (bug de autoria)
	KindRecipeCycleDetected            Kind = "RecipeCycleDetected"
	KindVariantRecipeMismatch          Kind = "VariantRecipeMismatch"
	KindVariationBelongsToOtherMenuItem Kind = "VariationBelongsToOtherMenuItem"

	// Limite de tentativas
	KindPinLocked   Kind = "PinLocked"
	KindRateLimited Kind = "RateLimited"

	// Interno
	KindInternal Kind = "Internal"
)

// Error é o erro de domínio portador de kind, mensagem e detalhe.
type Error struct {
	Kind    Kind
	Message string
	Detail  any
	cause   error
}

// Error implementa a interface error.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap expõe a causa original para errors.Is/As.
func (e *Error) Unwrap() error {
	return e.cause
}

// New cria um erro de domínio com o kind e a mensagem informados.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf cria um erro de domínio com mensagem formatada.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithDetail anexa um payload legível por máquina (lista de faltas, caminho de ciclo).
func (e *Error) WithDetail(detail any) *Error {
	e.Detail = detail
	return e
}

// Wrap cria um erro de domínio preservando a causa original.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// KindOf extrai o kind de um erro; erros desconhecidos classificam como Internal.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindInternal
}

// IsKind verifica se o erro (ou sua cadeia) carrega o kind informado.
func IsKind(err error, kind Kind) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}

// DetailOf devolve o payload de detalhe do erro, se houver.
func DetailOf(err error) any {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Detail
	}
	return nil
}
