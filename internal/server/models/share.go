package models

import "time"

// Permission is the fixed two-level access model.
type Permission int64

const (
	PermissionViewer Permission = 1
	PermissionEditor Permission = 2
)

// Name returns the display name stored in the permissions table.
func (p Permission) Name() string {
	switch p {
	case PermissionViewer:
		return "Viewer"
	case PermissionEditor:
		return "Editor"
	}
	return "Unknown"
}

// Valid reports whether p is one of the known permission levels.
func (p Permission) Valid() bool {
	return p == PermissionViewer || p == PermissionEditor
}

// ParsePermissionName maps a display name back to a Permission.
func ParsePermissionName(name string) (Permission, bool) {
	switch name {
	case "Viewer":
		return PermissionViewer, true
	case "Editor":
		return PermissionEditor, true
	}
	return 0, false
}

// SharedFile is an active grant: UserID holds the named permission on
// FileID. DepartmentID is the grantee's department snapshotted at grant
// time; membership changes later do not rewrite it. At most one grant
// exists per (file, user) pair.
type SharedFile struct {
	ID           string     `json:"id"`
	FileID       string     `json:"file_id"`
	UserID       string     `json:"shared_with_user_id"`
	DepartmentID string     `json:"shared_with_department_id"`
	Permission   Permission `json:"shared_permission_id"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ShareRequest is a pending ask from a non-owner. It exists only while
// pending: approval converts it into a SharedFile and deletes it, and a
// request discovered to duplicate an existing grant is deleted as well.
type ShareRequest struct {
	ID         string     `json:"id"`
	FileID     string     `json:"requested_file_id"`
	UserID     string     `json:"requested_by_user_id"`
	Permission Permission `json:"requested_permission_id"`
	CreatedAt  time.Time  `json:"created_at"`
}

// SharedFileView is a grant joined with the display data the
// shared-with-me listing needs.
type SharedFileView struct {
	SharedFile
	FileName        string `json:"file_name"`
	FileDescription string `json:"file_description"`
	OwnerName       string `json:"name"`
	PermissionName  string `json:"permission_name"`
}

// ShareRequestView is a pending request joined with file and requester
// display data, for the owner's approval queue.
type ShareRequestView struct {
	ShareRequest
	FileName        string `json:"file_name"`
	FileDescription string `json:"file_description"`
	RequesterName   string `json:"name"`
	PermissionName  string `json:"permission_name"`
}

// AccessListEntry is a grant joined with grantee and department display
// data, for a file's per-permission access list.
type AccessListEntry struct {
	SharedFile
	UserName       string `json:"name"`
	UserEmail      string `json:"email"`
	PermissionName string `json:"permission_name"`
	DepartmentName string `json:"dep_name"`
}
