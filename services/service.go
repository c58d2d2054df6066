package services

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeremiapane/restaurant-floor/models"
)

// Staff is the authenticated identity supplied by the auth layer. It is
// trusted as-is for audit fields.
type Staff struct {
	ID   uint
	Role models.StaffRole
}

func (s Staff) validate() error {
	if s.ID == 0 {
		return validation("staff", "staff identity is required")
	}
	return nil
}

// forUpdate locks the selected rows until the transaction ends. SQLite
// ignores the clause; its single writer gives the same guarantee.
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// compareAndSet updates the row only while its status is one of expected
// and reports whether the row was changed.
func compareAndSet(tx *gorm.DB, model interface{}, id uint, expected interface{}, updates map[string]interface{}) (bool, error) {
	res := tx.Model(model).
		Where("id = ? AND status IN ?", id, expected).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
