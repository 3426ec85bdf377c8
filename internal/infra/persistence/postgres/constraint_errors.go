package postgres

import (
	"authcore/internal/errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// isUniqueConstraintViolation reports whether err is a unique-index violation, either
// translated by GORM or raised by the pgx driver (SQLSTATE 23505).
func isUniqueConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	return hasPgCode(err, pgerrcode.UniqueViolation)
}

func isNotNullConstraintViolation(err error) bool {
	return hasPgCode(err, pgerrcode.NotNullViolation)
}

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	return pgErr.Code == code
}
