package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"filevault/internal/common"
	"filevault/internal/dbx"
	"filevault/internal/logging"
	"filevault/internal/server/models"
	"filevault/internal/server/repositories/directory"
	"filevault/internal/server/repositories/files"
	"filevault/internal/server/repositories/repomanager"
	"filevault/internal/server/repositories/sharerequests"
	"filevault/internal/server/repositories/shares"
)

// -------- test fakes --------

type fakeFilesRepo struct {
	files.Repository
	byID   map[string]*models.File
	nextID int

	createErr error
}

func newFakeFilesRepo() *fakeFilesRepo {
	return &fakeFilesRepo{byID: map[string]*models.File{}}
}

func (f *fakeFilesRepo) add(file *models.File) *models.File {
	f.nextID++
	stored := *file
	stored.ID = fmt.Sprintf("f%d", f.nextID)
	f.byID[stored.ID] = &stored
	return &stored
}

func (f *fakeFilesRepo) Create(ctx context.Context, file *models.File) (*models.File, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.byID {
		if existing.OwnerID == file.OwnerID && existing.Name == file.Name {
			return nil, common.ErrorDuplicateName
		}
	}
	return f.add(file), nil
}

func (f *fakeFilesRepo) GetByID(ctx context.Context, id string) (*models.File, error) {
	file, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	copied := *file
	return &copied, nil
}

func (f *fakeFilesRepo) GetOwned(ctx context.Context, id string, ownerID string) (*models.File, error) {
	file, ok := f.byID[id]
	if !ok || file.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	copied := *file
	return &copied, nil
}

func (f *fakeFilesRepo) ListByOwner(ctx context.Context, ownerID string) ([]*models.File, error) {
	var result []*models.File
	for _, file := range f.byID {
		if file.OwnerID == ownerID {
			result = append(result, file)
		}
	}
	return result, nil
}

func (f *fakeFilesRepo) NameExists(ctx context.Context, ownerID string, name string, excludeFileID string) (bool, error) {
	for _, file := range f.byID {
		if file.OwnerID == ownerID && file.Name == name && file.ID != excludeFileID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFilesRepo) UpdateMetadata(ctx context.Context, id string, name string, description string) error {
	file, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	file.Name = name
	file.Description = description
	return nil
}

func (f *fakeFilesRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeSharesRepo struct {
	shares.Repository
	byID   map[string]*models.SharedFile
	nextID int

	listForUser []*models.SharedFileView
	accessList  []*models.AccessListEntry
}

func newFakeSharesRepo() *fakeSharesRepo {
	return &fakeSharesRepo{byID: map[string]*models.SharedFile{}}
}

func (f *fakeSharesRepo) Create(ctx context.Context, share *models.SharedFile) (*models.SharedFile, error) {
	for _, existing := range f.byID {
		if existing.FileID == share.FileID && existing.UserID == share.UserID {
			return nil, common.ErrorAlreadyShared
		}
	}
	f.nextID++
	stored := *share
	stored.ID = fmt.Sprintf("s%d", f.nextID)
	f.byID[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (f *fakeSharesRepo) GetByID(ctx context.Context, id string) (*models.SharedFile, error) {
	share, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	copied := *share
	return &copied, nil
}

func (f *fakeSharesRepo) GetForUser(ctx context.Context, fileID string, userID string) (*models.SharedFile, error) {
	for _, share := range f.byID {
		if share.FileID == fileID && share.UserID == userID {
			copied := *share
			return &copied, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeSharesRepo) ExistsForUser(ctx context.Context, fileID string, userID string) (bool, error) {
	_, err := f.GetForUser(ctx, fileID, userID)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (f *fakeSharesRepo) ExistsForDepartment(ctx context.Context, fileID string, departmentID string) (bool, error) {
	for _, share := range f.byID {
		if share.FileID == fileID && share.DepartmentID == departmentID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSharesRepo) ListForUser(ctx context.Context, userID string) ([]*models.SharedFileView, error) {
	return f.listForUser, nil
}

func (f *fakeSharesRepo) AccessList(ctx context.Context, fileID string, permission models.Permission) ([]*models.AccessListEntry, error) {
	return f.accessList, nil
}

func (f *fakeSharesRepo) UpdatePermission(ctx context.Context, id string, permission models.Permission) error {
	share, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	share.Permission = permission
	return nil
}

func (f *fakeSharesRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeSharesRepo) DeleteByFile(ctx context.Context, fileID string) error {
	for id, share := range f.byID {
		if share.FileID == fileID {
			delete(f.byID, id)
		}
	}
	return nil
}

type fakeRequestsRepo struct {
	sharerequests.Repository
	byID   map[string]*models.ShareRequest
	nextID int

	listForOwner []*models.ShareRequestView
}

func newFakeRequestsRepo() *fakeRequestsRepo {
	return &fakeRequestsRepo{byID: map[string]*models.ShareRequest{}}
}

func (f *fakeRequestsRepo) Create(ctx context.Context, req *models.ShareRequest) (*models.ShareRequest, error) {
	for _, existing := range f.byID {
		if existing.FileID == req.FileID && existing.UserID == req.UserID {
			return nil, common.ErrorRequestExists
		}
	}
	f.nextID++
	stored := *req
	stored.ID = fmt.Sprintf("r%d", f.nextID)
	f.byID[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (f *fakeRequestsRepo) GetByID(ctx context.Context, id string) (*models.ShareRequest, error) {
	req, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	copied := *req
	return &copied, nil
}

func (f *fakeRequestsRepo) Exists(ctx context.Context, fileID string, userID string) (bool, error) {
	for _, req := range f.byID {
		if req.FileID == fileID && req.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRequestsRepo) ListForOwner(ctx context.Context, ownerID string) ([]*models.ShareRequestView, error) {
	return f.listForOwner, nil
}

func (f *fakeRequestsRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeRequestsRepo) DeleteByFile(ctx context.Context, fileID string) error {
	for id, req := range f.byID {
		if req.FileID == fileID {
			delete(f.byID, id)
		}
	}
	return nil
}

type fakeDirectoryRepo struct {
	directory.Repository
	users       map[string]*models.User
	members     map[string][]string
	departments []*models.Department
}

func newFakeDirectoryRepo() *fakeDirectoryRepo {
	return &fakeDirectoryRepo{
		users:   map[string]*models.User{},
		members: map[string][]string{},
	}
}

func (f *fakeDirectoryRepo) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return user, nil
}

func (f *fakeDirectoryRepo) MemberIDs(ctx context.Context, departmentID string) ([]string, error) {
	members, ok := f.members[departmentID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return members, nil
}

func (f *fakeDirectoryRepo) ListDepartments(ctx context.Context) ([]*models.Department, error) {
	return f.departments, nil
}

func (f *fakeDirectoryRepo) ListUsersExcept(ctx context.Context, userID string) ([]*models.User, error) {
	var result []*models.User
	for _, user := range f.users {
		if user.ID != userID {
			result = append(result, user)
		}
	}
	return result, nil
}

type fakeRepoManager struct {
	repomanager.RepositoryManager
	f *fakeFilesRepo
	s *fakeSharesRepo
	r *fakeRequestsRepo
	d *fakeDirectoryRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		f: newFakeFilesRepo(),
		s: newFakeSharesRepo(),
		r: newFakeRequestsRepo(),
		d: newFakeDirectoryRepo(),
	}
}

func (m *fakeRepoManager) Files(db dbx.DBTX) files.Repository                 { return m.f }
func (m *fakeRepoManager) Shares(db dbx.DBTX) shares.Repository               { return m.s }
func (m *fakeRepoManager) ShareRequests(db dbx.DBTX) sharerequests.Repository { return m.r }
func (m *fakeRepoManager) Directory(db dbx.DBTX) directory.Repository         { return m.d }

// -------- helpers --------

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func expectTxCommit(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectCommit()
}

func expectTxRollback(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectRollback()
}
