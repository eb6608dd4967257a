package shares

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"filevault/internal/common"
	"filevault/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func grantRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "file_id", "shared_with_user_id",
		"shared_with_department_id", "shared_permission_id", "created_at"})
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	q := `(?s)^\s*INSERT\s+INTO\s+shared_files\b.*RETURNING\b`
	mock.ExpectQuery(q).
		WithArgs("f1", "u2", "d1", models.PermissionViewer).
		WillReturnRows(grantRows().AddRow("s1", "f1", "u2", "d1", int64(models.PermissionViewer), now))

	got, err := repo.Create(context.Background(), &models.SharedFile{
		FileID: "f1", UserID: "u2", DepartmentID: "d1", Permission: models.PermissionViewer,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "s1" || got.Permission != models.PermissionViewer || got.DepartmentID != "d1" {
		t.Fatalf("unexpected row: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DuplicateGrant(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^\s*INSERT\s+INTO\s+shared_files\b`).
		WithArgs("f1", "u2", "d1", models.PermissionViewer).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.SharedFile{
		FileID: "f1", UserID: "u2", DepartmentID: "d1", Permission: models.PermissionViewer,
	})
	if !errors.Is(err, common.ErrorAlreadyShared) {
		t.Fatalf("want ErrorAlreadyShared, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^\s*INSERT\s+INTO\s+shared_files\b`).
		WithArgs("f1", "u2", "d1", models.PermissionViewer).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.SharedFile{
		FileID: "f1", UserID: "u2", DepartmentID: "d1", Permission: models.PermissionViewer,
	})
	if err == nil || !regexp.MustCompile(`failed to insert grant: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT .+ FROM shared_files WHERE id=\$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestGetForUser_OK(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)SELECT .+ FROM shared_files WHERE file_id=\$1 AND shared_with_user_id=\$2`).
		WithArgs("f1", "u2").
		WillReturnRows(grantRows().AddRow("s1", "f1", "u2", "d1", int64(models.PermissionEditor), now))

	got, err := repo.GetForUser(context.Background(), "f1", "u2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "s1" || got.Permission != models.PermissionEditor {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestExistsForUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `SELECT EXISTS \(SELECT 1 FROM shared_files WHERE file_id=\$1 AND shared_with_user_id=\$2\)`
	mock.ExpectQuery(q).
		WithArgs("f1", "u2").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsForUser(context.Background(), "f1", "u2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Fatalf("want true, got false")
	}
}

func TestExistsForDepartment(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `SELECT EXISTS \(SELECT 1 FROM shared_files WHERE file_id=\$1 AND shared_with_department_id=\$2\)`
	mock.ExpectQuery(q).
		WithArgs("f1", "d1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.ExistsForDepartment(context.Background(), "f1", "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Fatalf("want false, got true")
	}
}

func TestListForUser_OK(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	q := `(?s)SELECT .+ FROM shared_files sf\s+JOIN permissions p .+JOIN files f .+JOIN users u .+WHERE sf\.shared_with_user_id = \$1\s+ORDER BY sf\.created_at DESC`
	rows := sqlmock.NewRows([]string{"id", "file_id", "shared_with_user_id", "shared_with_department_id",
		"shared_permission_id", "created_at", "file_name", "file_description", "name", "permission_name"}).
		AddRow("s1", "f1", "u2", "d1", int64(models.PermissionViewer), now, "a.txt", "notes", "Alice", "Viewer")

	mock.ExpectQuery(q).
		WithArgs("u2").
		WillReturnRows(rows)

	got, err := repo.ListForUser(context.Background(), "u2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].FileName != "a.txt" || got[0].OwnerName != "Alice" || got[0].PermissionName != "Viewer" {
		t.Fatalf("unexpected rows: %+v", got)
	}
}

func TestAccessList_OK(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	q := `(?s)SELECT .+ FROM shared_files sf\s+JOIN permissions p .+JOIN users u .+JOIN departments d .+WHERE sf\.file_id = \$1 AND sf\.shared_permission_id = \$2\s+ORDER BY u\.name`
	rows := sqlmock.NewRows([]string{"id", "file_id", "shared_with_user_id", "shared_with_department_id",
		"shared_permission_id", "created_at", "name", "email", "permission_name", "dep_name"}).
		AddRow("s1", "f1", "u2", "d1", int64(models.PermissionEditor), now, "Bob", "bob@corp.test", "Editor", "Sales")

	mock.ExpectQuery(q).
		WithArgs("f1", models.PermissionEditor).
		WillReturnRows(rows)

	got, err := repo.AccessList(context.Background(), "f1", models.PermissionEditor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].UserEmail != "bob@corp.test" || got[0].DepartmentName != "Sales" {
		t.Fatalf("unexpected rows: %+v", got)
	}
}

func TestUpdatePermission_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE shared_files SET shared_permission_id=\$2 WHERE id=\$1`).
		WithArgs("missing", models.PermissionEditor).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePermission(context.Background(), "missing", models.PermissionEditor)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestDelete_OK(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM shared_files WHERE id=\$1`).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeleteByFile_ZeroRowsOK(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM shared_files WHERE file_id=\$1`).
		WithArgs("f1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.DeleteByFile(context.Background(), "f1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
