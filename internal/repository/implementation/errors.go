package implementation

import (
	"errors"

	"collectify-be/internal/repository/contract"

	"gorm.io/gorm"
)

// translateError relies on gorm.Config.TranslateError being enabled.
func translateError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return contract.ErrDuplicate
	}
	return err
}
