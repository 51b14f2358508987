package auth

import (
	"unicode"

	"arena-ledger/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// JoinRequest carries the only piece of client input the server accepts
// at face value before moderation: the desired display name.
type JoinRequest struct {
	DisplayName string `validate:"required,min=2,max=24"`
}

func ValidateJoin(req JoinRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}

	if !isDisplayable(req.DisplayName) {
		return errors.ErrNameRejected
	}
	return nil
}

// isDisplayable refuses control characters and other runes a HUD cannot
// render. Spaces are fine, leading or trailing ones are not.
func isDisplayable(s string) bool {
	if s != "" && (s[0] == ' ' || s[len(s)-1] == ' ') {
		return false
	}
	for _, r := range s {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
