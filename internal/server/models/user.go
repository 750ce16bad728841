package models

import "database/sql"

// User is an account created from an Apple identity assertion. AppleID is
// the stable identifier Apple assigns per app; email and name arrive only on
// the very first sign-in and are kept verbatim.
type User struct {
	ID          string
	AppleID     string
	Email       sql.NullString
	DisplayName sql.NullString
	BirthDate   sql.NullString
	BirthTime   sql.NullString
	BirthPlace  sql.NullString
}
