package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/taskforge/task-manager-api/internal/models"
)

func setupMockDB(t *testing.T) (TaskRepository, sqlmock.Sqlmock) {
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

	return NewTaskRepository(db), mock
}

func TestTaskRepository_Count_StatusFilter(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `tasks` WHERE tasks\\.status = \\?").
		WithArgs("Pending").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(4))

	status := models.TaskStatusPending
	count, err := repo.Count(TaskFilter{Status: &status})
	require.NoError(t, err)
	require.Equal(t, int64(4), count)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Count_AssigneeFilter(t *testing.T) {
	repo, mock := setupMockDB(t)

	// The assignee filter must turn into an EXISTS subquery against the
	// assignments table, not a join that could duplicate rows
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `tasks` WHERE EXISTS \\(SELECT 1 FROM `task_assignments`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(2))

	userID := uint64(7)
	count, err := repo.Count(TaskFilter{AssignedUserID: &userID})
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_PriorityCounts(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT tasks\\.priority AS priority, COUNT\\(\\*\\) AS count FROM `tasks`").
		WillReturnRows(sqlmock.NewRows([]string{"priority", "count"}).
			AddRow("Low", 1).
			AddRow("Medium", 3).
			AddRow("High", 2))

	counts, err := repo.PriorityCounts(TaskFilter{})
	require.NoError(t, err)
	require.Equal(t, map[string]int64{"Low": 1, "Medium": 3, "High": 2}, counts)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Delete_RemovesRelations(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `task_assignments` WHERE task_id = \\?").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM `checklist_items` WHERE task_id = \\?").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("UPDATE `tasks` SET `deleted_at`=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(42))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ReplaceChecklist(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `checklist_items` WHERE task_id = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `checklist_items`").
		WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectCommit()

	items := []models.ChecklistItem{
		{Text: "first", Completed: true},
		{Text: "second", Completed: false},
	}
	require.NoError(t, repo.ReplaceChecklist(42, items))

	require.NoError(t, mock.ExpectationsWereMet())
}
