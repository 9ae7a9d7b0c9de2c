package persistence

import (
	"errors"

	"github.com/brightcart/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateWriteError maps GORM's translated driver errors onto the
// domain sentinels the application layer branches on. The connection is
// opened with TranslateError so unique violations surface as
// gorm.ErrDuplicatedKey regardless of driver. Anything unrecognized
// passes through unchanged.
func translateWriteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}
