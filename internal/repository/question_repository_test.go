package repository

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/courseboard/api/internal/models"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return db, mock
}

func TestQuestionRepository_CreateWithFirstAnswerCommits(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewQuestionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `questions`").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec("INSERT INTO `answers`").
		WillReturnResult(sqlmock.NewResult(77, 1))
	mock.ExpectExec("UPDATE `questions`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	q := &models.Question{EntryID: 3, Title: "t", CreatedAt: 100}
	a := &models.Answer{CreatedBy: 9, CreatedAt: 100, EditedAt: 100, EditedBy: 9, Text: "x"}

	require.NoError(t, repo.CreateWithFirstAnswer(q, a))
	require.Equal(t, int64(42), q.ID)
	require.Equal(t, int64(77), a.ID)
	require.Equal(t, int64(42), a.QuestionID)
	require.Equal(t, int64(77), q.FirstAnswerID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionRepository_CreateWithFirstAnswerRollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewQuestionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `questions`").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec("INSERT INTO `answers`").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	q := &models.Question{EntryID: 3, Title: "t", CreatedAt: 100}
	a := &models.Answer{CreatedBy: 9, CreatedAt: 100, EditedAt: 100, EditedBy: 9, Text: "x"}

	err := repo.CreateWithFirstAnswer(q, a)
	require.ErrorIs(t, err, ErrCreateFirstAnswer)

	// Nothing survived, including the ids the rolled-back inserts handed out.
	require.Zero(t, q.ID)
	require.Zero(t, q.FirstAnswerID)
	require.Zero(t, a.ID)
	require.Zero(t, a.QuestionID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionRepository_CreateWithFirstAnswerBackfillFails(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewQuestionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `questions`").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec("INSERT INTO `answers`").
		WillReturnResult(sqlmock.NewResult(77, 1))
	mock.ExpectExec("UPDATE `questions`").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	q := &models.Question{EntryID: 3, Title: "t", CreatedAt: 100}
	a := &models.Answer{CreatedBy: 9, CreatedAt: 100, EditedAt: 100, EditedBy: 9, Text: "x"}

	err := repo.CreateWithFirstAnswer(q, a)
	require.ErrorIs(t, err, ErrSetFirstAnswer)
	require.Zero(t, q.ID)
	require.Zero(t, a.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionRepository_DeleteCascadeRollsBackOnLikeFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewQuestionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `id` FROM `answers`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)).AddRow(int64(6)))
	mock.ExpectExec("DELETE FROM `answer_likes`").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	_, err := repo.DeleteCascade(1)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
