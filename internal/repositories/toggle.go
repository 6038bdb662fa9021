package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// toggleRow deletes the row matched by query when it exists and creates row
// otherwise, reporting whether the row exists afterwards. When a concurrent
// toggle inserted the same row first, the insert trips the unique index and
// the row is deleted instead, so two racing toggles cancel out. The gorm.DB
// must run with TranslateError so the violation surfaces as ErrDuplicatedKey.
func toggleRow[T any](ctx context.Context, db *gorm.DB, row *T, query string, args ...interface{}) (bool, error) {
	exists := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing T
		err := tx.Where(query, args...).First(&existing).Error
		switch {
		case err == nil:
			return tx.Delete(&existing).Error
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		// the savepoint keeps tx usable after a failed insert
		err = tx.Transaction(func(sp *gorm.DB) error {
			return sp.Create(row).Error
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return tx.Where(query, args...).Delete(new(T)).Error
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return exists, nil
}
