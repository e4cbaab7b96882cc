package issues

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/user/civicfix-go/apperror"
	"github.com/user/civicfix-go/db"
)

const issueColumns = `id, user_id, title, description, date, image, location, upvotes, downvotes`

// Service implements the issue registry over the persistence layer.
type Service struct {
	db db.Querier
}

// NewService creates an issue Service backed by the given querier.
func NewService(q db.Querier) *Service {
	return &Service{db: q}
}

// List returns all issues in storage order. No authentication required.
func (s *Service) List(ctx context.Context) ([]Issue, error) {
	query := fmt.Sprintf(`SELECT %s FROM issues ORDER BY id`, issueColumns)
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list issues", err)
	}
	defer rows.Close()

	issues := []Issue{}
	for rows.Next() {
		var issue Issue
		if err := scanIssue(rows, &issue); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan issue", err)
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list issues", err)
	}
	return issues, nil
}

// GetByID returns a single issue. No authentication required.
func (s *Service) GetByID(ctx context.Context, id int64) (*Issue, error) {
	query := fmt.Sprintf(`SELECT %s FROM issues WHERE id = $1`, issueColumns)
	var issue Issue
	if err := scanIssue(s.db.QueryRow(ctx, query, id), &issue); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("issue not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get issue", err)
	}
	return &issue, nil
}

// Create inserts a new issue owned by the caller. Vote counters start at
// zero via the column defaults.
func (s *Service) Create(ctx context.Context, callerID int64, req IssueRequest) (int64, error) {
	var id int64
	query := `INSERT INTO issues (user_id, title, description, date, image, location)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`
	err := s.db.QueryRow(ctx, query, callerID, req.Title, req.Description, req.Date, req.Image, req.Location).Scan(&id)
	if err != nil {
		return 0, apperror.NewDatabaseError("failed to create issue", err)
	}
	return id, nil
}

// Update replaces the content fields of an issue. Only the owner may update;
// the vote counters are untouched.
func (s *Service) Update(ctx context.Context, callerID, id int64, req IssueRequest) (*Issue, error) {
	if err := s.requireOwner(ctx, callerID, id, "update"); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`UPDATE issues
	          SET title = $1, description = $2, date = $3, image = $4, location = $5
	          WHERE id = $6
	          RETURNING %s`, issueColumns)
	var issue Issue
	err := scanIssue(s.db.QueryRow(ctx, query, req.Title, req.Description, req.Date, req.Image, req.Location, id), &issue)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("issue not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to update issue", err)
	}
	return &issue, nil
}

// Delete permanently removes an issue. Only the owner may delete.
func (s *Service) Delete(ctx context.Context, callerID, id int64) (int64, error) {
	if err := s.requireOwner(ctx, callerID, id, "delete"); err != nil {
		return 0, err
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM issues WHERE id = $1`, id)
	if err != nil {
		return 0, apperror.NewDatabaseError("failed to delete issue", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, apperror.NewNotFoundError("issue not found", nil)
	}
	return id, nil
}

// Upvote increments the upvote counter by one. Any authenticated caller may
// vote, the owner included, and repeated votes by the same caller are
// allowed. The increment runs as a single UPDATE so concurrent votes on the
// same issue serialize per row and none are lost.
func (s *Service) Upvote(ctx context.Context, callerID, id int64) (int64, error) {
	return s.vote(ctx, id, "upvotes")
}

// Downvote increments the downvote counter by one. Same rules as Upvote.
func (s *Service) Downvote(ctx context.Context, callerID, id int64) (int64, error) {
	return s.vote(ctx, id, "downvotes")
}

func (s *Service) vote(ctx context.Context, id int64, column string) (int64, error) {
	// column is one of the two fixed counter names, never caller input.
	query := fmt.Sprintf(`UPDATE issues SET %s = %s + 1 WHERE id = $1 RETURNING id`, column, column)
	var returnedID int64
	err := s.db.QueryRow(ctx, query, id).Scan(&returnedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperror.NewNotFoundError("issue not found", nil)
		}
		return 0, apperror.NewDatabaseError("failed to record vote", err)
	}
	return returnedID, nil
}

// requireOwner fails with NotFound when the issue is absent and Forbidden
// when the caller does not own it. Ownership never changes after creation,
// so check-then-mutate is not racy here.
func (s *Service) requireOwner(ctx context.Context, callerID, id int64, action string) error {
	var ownerID int64
	err := s.db.QueryRow(ctx, `SELECT user_id FROM issues WHERE id = $1`, id).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NewNotFoundError("issue not found", nil)
		}
		return apperror.NewDatabaseError("failed to get issue", err)
	}
	if ownerID != callerID {
		return apperror.NewForbiddenError(fmt.Sprintf("not authorized to %s this issue", action), nil)
	}
	return nil
}

// scanIssue scans a full issue row in issueColumns order.
func scanIssue(row pgx.Row, issue *Issue) error {
	return row.Scan(
		&issue.ID,
		&issue.UserID,
		&issue.Title,
		&issue.Description,
		&issue.Date,
		&issue.Image,
		&issue.Location,
		&issue.Upvotes,
		&issue.Downvotes,
	)
}
