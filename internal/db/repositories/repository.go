package repositories

import (
	"errors"

	"github.com/go-pg/pg/v10"
)

type repository struct {
	db *pg.DB
}

// IsNotFound reports whether err means the queried row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, pg.ErrNoRows)
}
