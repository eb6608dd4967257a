package services

import (
	"context"
	"database/sql"

	"filevault/internal/common"
	"filevault/internal/server/models"
	"filevault/internal/server/repositories/repomanager"
)

// ListingService composes repository read paths into the views the UI
// consumes. It holds no state of its own; every listing is a deterministic
// join with a defined sort order.
type ListingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewListingService constructs a ListingService.
func NewListingService(db *sql.DB, m repomanager.RepositoryManager) *ListingService {
	return &ListingService{db: db, repomanager: m}
}

// MyFiles lists the caller's own files, most recently updated first.
func (s *ListingService) MyFiles(ctx context.Context, callerID string) ([]*models.File, error) {
	return s.repomanager.Files(s.db).ListByOwner(ctx, callerID)
}

// SharedWithMe lists the caller's grants with file, owner and permission
// display data, newest grant first.
func (s *ListingService) SharedWithMe(ctx context.Context, callerID string) ([]*models.SharedFileView, error) {
	return s.repomanager.Shares(s.db).ListForUser(ctx, callerID)
}

// DiscoverableFiles lists other users' files the caller has no grant on
// and no pending request for, ordered by file name.
func (s *ListingService) DiscoverableFiles(ctx context.Context, callerID string) ([]*models.DiscoverableFile, error) {
	return s.repomanager.Files(s.db).ListDiscoverable(ctx, callerID)
}

// PendingRequests lists the requests waiting on files the caller owns,
// newest first.
func (s *ListingService) PendingRequests(ctx context.Context, callerID string) ([]*models.ShareRequestView, error) {
	return s.repomanager.ShareRequests(s.db).ListForOwner(ctx, callerID)
}

// AccessList lists the grants on one of the caller's files at the given
// permission level, ordered by grantee name. Files not owned by the caller
// are reported as not-found.
func (s *ListingService) AccessList(ctx context.Context, callerID string, fileID string,
	permissionName string) ([]*models.AccessListEntry, error) {

	permission, ok := models.ParsePermissionName(permissionName)
	if !ok {
		return nil, common.ErrorNotFound
	}

	if _, err := s.repomanager.Files(s.db).GetOwned(ctx, fileID, callerID); err != nil {
		return nil, err
	}

	return s.repomanager.Shares(s.db).AccessList(ctx, fileID, permission)
}

// DepartmentsToShare lists every department, for the bulk-share picker.
func (s *ListingService) DepartmentsToShare(ctx context.Context) ([]*models.Department, error) {
	return s.repomanager.Directory(s.db).ListDepartments(ctx)
}

// UsersToShare lists every user except the caller, ordered by email, for
// the share-target picker.
func (s *ListingService) UsersToShare(ctx context.Context, callerID string) ([]*models.User, error) {
	return s.repomanager.Directory(s.db).ListUsersExcept(ctx, callerID)
}
