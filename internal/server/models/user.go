package models

// User is a directory entity. The directory is maintained elsewhere; the
// core only reads it to resolve bulk-share targets and to snapshot a
// grantee's department.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	DepartmentID string `json:"department_id"`
}

// Department is a directory entity used as a bulk-share target.
type Department struct {
	ID   string `json:"id"`
	Name string `json:"dep_name"`
}
