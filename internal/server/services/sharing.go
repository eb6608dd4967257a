package services

import (
	"context"
	"database/sql"

	"filevault/internal/common"
	"filevault/internal/dbx"
	"filevault/internal/logging"
	"filevault/internal/server/models"
	"filevault/internal/server/repositories/repomanager"
)

// SharingService implements the ACL state machine. Per (file, user) pair
// the states are NoRelation -> Requested -> Granted; revoke returns the
// pair to NoRelation. Every transition's precondition check and write run
// in one transaction, and the unique index on (file_id, shared_with_user_id)
// backs the at-most-one-grant invariant against races.
type SharingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

// NewSharingService constructs a SharingService.
func NewSharingService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *SharingService {
	return &SharingService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "sharing_service"),
	}
}

// Request records a non-owner's ask for access. A pair that already has a
// grant or a pending request stays where it is and the caller learns why.
// Owners asking for their own file get the not-found shape: the operation
// simply does not exist for them.
func (s *SharingService) Request(ctx context.Context, callerID string, fileID string,
	permission models.Permission) (*models.ShareRequest, error) {

	if !permission.Valid() {
		return nil, common.ErrorNotFound
	}

	var created *models.ShareRequest
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		file, err := s.repomanager.Files(tx).GetByID(ctx, fileID)
		if err != nil {
			return err
		}
		if file.OwnerID == callerID {
			return common.ErrorNotFound
		}

		granted, err := s.repomanager.Shares(tx).ExistsForUser(ctx, fileID, callerID)
		if err != nil {
			return err
		}
		if granted {
			return common.ErrorAlreadyShared
		}

		created, err = s.repomanager.ShareRequests(tx).Create(ctx, &models.ShareRequest{
			FileID:     fileID,
			UserID:     callerID,
			Permission: permission,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "share requested", "file_id", fileID, "user_id", callerID)
	return created, nil
}

// Approve converts a pending request into a grant. Only the file owner may
// approve. When a grant for the pair already exists the stale request is
// deleted and the conflict reported; no duplicate grant is ever created.
// The requester's department is resolved once, here, and snapshotted onto
// the grant.
func (s *SharingService) Approve(ctx context.Context, callerID string, requestID string) (*models.SharedFile, error) {
	var grant *models.SharedFile
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		requestRepo := s.repomanager.ShareRequests(tx)

		req, err := requestRepo.GetByID(ctx, requestID)
		if err != nil {
			return err
		}

		if _, err := s.repomanager.Files(tx).GetOwned(ctx, req.FileID, callerID); err != nil {
			return err
		}

		requester, err := s.repomanager.Directory(tx).GetUser(ctx, req.UserID)
		if err != nil {
			return err
		}

		granted, err := s.repomanager.Shares(tx).ExistsForUser(ctx, req.FileID, req.UserID)
		if err != nil {
			return err
		}
		if granted {
			// Stale request: the pair is already Granted. Clean up and
			// report the conflict in the same transaction.
			if err := requestRepo.Delete(ctx, req.ID); err != nil {
				return err
			}
			return common.ErrorAlreadyShared
		}

		grant, err = s.repomanager.Shares(tx).Create(ctx, &models.SharedFile{
			FileID:       req.FileID,
			UserID:       req.UserID,
			DepartmentID: requester.DepartmentID,
			Permission:   req.Permission,
		})
		if err != nil {
			return err
		}

		return requestRepo.Delete(ctx, req.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "share request approved", "request_id", requestID, "grant_id", grant.ID)
	return grant, nil
}

// ShareWithDepartment grants the permission to every current member of the
// department in one all-or-nothing transaction. Any existing grant carrying
// the department id means the department was already shared with, and the
// whole operation is rejected: a bulk-share is a point-in-time snapshot of
// membership, not a standing rule. The owner and members that already hold
// an individual grant are skipped rather than double-granted.
func (s *SharingService) ShareWithDepartment(ctx context.Context, callerID string, fileID string,
	departmentID string, permission models.Permission) (int, error) {

	if !permission.Valid() {
		return 0, common.ErrorNotFound
	}

	var created int
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created = 0

		file, err := s.repomanager.Files(tx).GetOwned(ctx, fileID, callerID)
		if err != nil {
			return err
		}

		shareRepo := s.repomanager.Shares(tx)

		exists, err := shareRepo.ExistsForDepartment(ctx, fileID, departmentID)
		if err != nil {
			return err
		}
		if exists {
			return common.ErrorDeptAlreadyShared
		}

		members, err := s.repomanager.Directory(tx).MemberIDs(ctx, departmentID)
		if err != nil {
			return err
		}

		for _, memberID := range members {
			if memberID == file.OwnerID {
				continue
			}

			granted, err := shareRepo.ExistsForUser(ctx, fileID, memberID)
			if err != nil {
				return err
			}
			if granted {
				continue
			}

			if _, err := shareRepo.Create(ctx, &models.SharedFile{
				FileID:       fileID,
				UserID:       memberID,
				DepartmentID: departmentID,
				Permission:   permission,
			}); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info(ctx, "file shared with department",
		"file_id", fileID, "department_id", departmentID, "grants", created)
	return created, nil
}

// UpdateAccess changes an existing grant's permission. Only the owner of
// the granted file may do it; an update to the current value reports
// no-changes without touching the row.
func (s *SharingService) UpdateAccess(ctx context.Context, callerID string, shareID string,
	permission models.Permission) error {

	if !permission.Valid() {
		return common.ErrorNotFound
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		grant, err := s.repomanager.Shares(tx).GetByID(ctx, shareID)
		if err != nil {
			return err
		}

		if _, err := s.repomanager.Files(tx).GetOwned(ctx, grant.FileID, callerID); err != nil {
			return err
		}

		if grant.Permission == permission {
			return common.ErrorNoChanges
		}

		return s.repomanager.Shares(tx).UpdatePermission(ctx, grant.ID, permission)
	})
}

// Revoke deletes a grant, returning the pair to NoRelation. Only the owner
// of the granted file may revoke.
func (s *SharingService) Revoke(ctx context.Context, callerID string, shareID string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		grant, err := s.repomanager.Shares(tx).GetByID(ctx, shareID)
		if err != nil {
			return err
		}

		if _, err := s.repomanager.Files(tx).GetOwned(ctx, grant.FileID, callerID); err != nil {
			return err
		}

		return s.repomanager.Shares(tx).Delete(ctx, grant.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "grant revoked", "share_id", shareID)
	return nil
}
