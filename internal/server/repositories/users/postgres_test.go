package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/sidereal-app/sidereal/internal/common"
	"github.com/sidereal-app/sidereal/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func userColumns() []string {
	return []string{"id", "apple_id", "email", "display_name", "birth_date", "birth_time", "birth_place"}
}

func TestUpsertByAppleID_Creates(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+users\s*\(apple_id,\s*email,\s*display_name\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*ON\s+CONFLICT`

	rows := sqlmock.NewRows(userColumns()).
		AddRow("u-1", "apple-1", "ana@example.com", "Ana", nil, nil, nil)
	mock.ExpectQuery(q).
		WithArgs("apple-1", sql.NullString{String: "ana@example.com", Valid: true}, sql.NullString{String: "Ana", Valid: true}).
		WillReturnRows(rows)

	u := &models.User{
		AppleID:     "apple-1",
		Email:       sql.NullString{String: "ana@example.com", Valid: true},
		DisplayName: sql.NullString{String: "Ana", Valid: true},
	}
	got, err := repo.UpsertByAppleID(context.Background(), u)
	if err != nil {
		t.Fatalf("UpsertByAppleID error: %v", err)
	}
	if got.ID != "u-1" || got.AppleID != "apple-1" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestUpsertByAppleID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WillReturnError(errors.New("db down"))

	_, err := repo.UpsertByAppleID(context.Background(), &models.User{AppleID: "a"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(userColumns()).
		AddRow("u-1", "apple-1", nil, nil, "1990-04-12", "04:30", "Riga")
	mock.ExpectQuery(`(?s)^\s*SELECT\s+id,\s*apple_id,.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("u-1").
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.BirthDate.String != "1990-04-12" || !got.BirthDate.Valid {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+id`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestUpdateProfile_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^\s*UPDATE\s+users\s+SET\s+birth_date`).
		WithArgs("u-1", "1990-04-12", "04:30", "Riga").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateProfile(context.Background(), "u-1", "1990-04-12", "04:30", "Riga"); err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}
}

func TestUpdateProfile_UnknownUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+users`).
		WithArgs("missing", "1990-04-12", "", "").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateProfile(context.Background(), "missing", "1990-04-12", "", "")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}
