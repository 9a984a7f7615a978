package dbhelper

import (
	"errors"

	"github.com/lib/pq"
)

// uniqueViolation is the postgres error code raised when a unique
// constraint is hit, e.g. inserting the same menu item into an order twice
// or double-booking a courier past the application guard.
const uniqueViolation = "23505"

func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
