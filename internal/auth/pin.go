package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

var pinFormat = regexp.MustCompile(`^[0-9]{4,8}$`)

// IsValidPin verifica o formato aceito: 4 a 8 dígitos.
func IsValidPin(pin string) bool {
	return pinFormat.MatchString(pin)
}

// PinKey deriva a chave determinística de busca de um PIN via HMAC-SHA256 com
// pepper do processo. Determinística por construção: é ela que permite o índice
// único esparso e a busca direta por PIN no login.
func PinKey(pin, pepper string) string {
	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(pin))
	return hex.EncodeToString(mac.Sum(nil))
}
