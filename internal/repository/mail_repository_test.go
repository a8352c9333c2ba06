package repository

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return db, mock
}

func TestCountByYearNumber_ScopesToYearAndNumber(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewIncomingMailRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT count(*) FROM `incoming_mails` WHERE arrival_year = ? AND arrival_number = ?",
	)).
		WithArgs(2024, "A-042").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))

	count, err := repo.CountByYearNumber(2024, "A-042", 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByYearNumber_ExcludesRecordUnderEdit(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewIncomingMailRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT count(*) FROM `incoming_mails` WHERE (arrival_year = ? AND arrival_number = ?) AND id != ?",
	)).
		WithArgs(2024, "A-042", uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))

	count, err := repo.CountByYearNumber(2024, "A-042", 7)
	require.NoError(t, err)
	require.Equal(t, int64(0), count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutgoingCountByYearNumber_ScopesToSignatureColumns(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOutgoingMailRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT count(*) FROM `outgoing_mails` WHERE signature_year = ? AND signature_number = ?",
	)).
		WithArgs(2024, "D-017").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))

	count, err := repo.CountByYearNumber(2024, "D-017", 0)
	require.NoError(t, err)
	require.Equal(t, int64(0), count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomingList_SelectsFlagInsteadOfBlob(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewIncomingMailRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `incoming_mails`")).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, arrival_date, arrival_time, arrival_number, arrival_year, "+
			"signature_date, signature_number, source, type, subject, "+
			"(attachment IS NOT NULL) AS has_attachment, attachment_name, receptionist, observations, "+
			"created_at, updated_at FROM `incoming_mails` ORDER BY arrival_date DESC, id DESC",
	)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "arrival_number", "has_attachment"}).
			AddRow(1, "A-042", true))

	mails, total, err := repo.List(0, 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, mails, 1)
	require.True(t, mails[0].HasAttachment)
	require.Nil(t, mails[0].Attachment)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutgoingList_SelectsFlagInsteadOfBlob(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOutgoingMailRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `outgoing_mails`")).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, signature_date, signature_number, signature_year, destination, "+
			"subject, (attachment IS NOT NULL) AS has_attachment, attachment_name, receptionist, "+
			"transmission_date, transmission_time, transmission_number, observations, "+
			"created_at, updated_at FROM `outgoing_mails` ORDER BY signature_date DESC, id DESC",
	)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "signature_number", "has_attachment"}).
			AddRow(1, "D-017", false))

	mails, total, err := repo.List(0, 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, mails, 1)
	require.False(t, mails[0].HasAttachment)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkProcessed_NotPendingWhenNoRowMatches(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `assignments` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.MarkProcessed(3, 9, "done", nil, "")
	require.ErrorIs(t, err, ErrNotPending)
	require.NoError(t, mock.ExpectationsWereMet())
}
