package dormdb

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrConnectivity indicates the MySQL server cannot be reached or
	// refused authentication.
	ErrConnectivity = errors.New("mysql connectivity failure")
	// ErrSchemaConflict indicates a schema statement failed for a reason
	// other than the object already existing.
	ErrSchemaConflict = errors.New("schema conflict")
	// ErrConstraint indicates a row violated referential integrity or
	// uniqueness during load.
	ErrConstraint = errors.New("constraint violation")
)

// MySQL server error numbers this package classifies on.
const (
	errnoDatabaseExists  = 1007 // ER_DB_CREATE_EXISTS
	errnoDuplicateIndex  = 1061 // ER_DUP_KEYNAME
	errnoDuplicateKey    = 1062 // ER_DUP_ENTRY
	errnoRowIsReferenced = 1451 // ER_ROW_IS_REFERENCED_2
	errnoNoReferencedRow = 1452 // ER_NO_REFERENCED_ROW_2
)

func hasErrno(err error, errno uint16) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == errno
}

// isDatabaseExists reports whether err is the duplicate-database error.
func isDatabaseExists(err error) bool {
	return hasErrno(err, errnoDatabaseExists)
}

// isDuplicateIndex reports whether err is the duplicate-index-name error.
// CREATE INDEX has no IF NOT EXISTS in MySQL, so idempotent index creation
// suppresses exactly this case.
func isDuplicateIndex(err error) bool {
	return hasErrno(err, errnoDuplicateIndex)
}

// IsConstraintViolation reports whether err is a uniqueness or referential
// integrity failure.
func IsConstraintViolation(err error) bool {
	return hasErrno(err, errnoDuplicateKey) ||
		hasErrno(err, errnoRowIsReferenced) ||
		hasErrno(err, errnoNoReferencedRow)
}
