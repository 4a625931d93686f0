package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storyboard-ai/internal/types"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "storyboard.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&types.PlanTask{}, &types.PlanSegment{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	original := DB
	DB = db
	t.Cleanup(func() {
		DB = original
	})
}

func TestSaveTask_Upsert(t *testing.T) {
	setupTestDB(t)

	task := &types.PlanTask{
		TaskId:   "plan_test0001",
		Scenario: "A knight rides through the forest.",
		ModelId:  "kling-v1.6",
		Status:   types.PlanTaskStatusPending,
	}
	assert.NoError(t, SaveTask(task))
	firstId := task.Id

	// 同 task_id 再存是更新不是新建
	updated := &types.PlanTask{
		TaskId:   "plan_test0001",
		Scenario: task.Scenario,
		ModelId:  task.ModelId,
		Status:   types.PlanTaskStatusSuccess,
	}
	assert.NoError(t, SaveTask(updated))
	assert.Equal(t, firstId, updated.Id)

	got, err := GetTask("plan_test0001")
	assert.NoError(t, err)
	assert.Equal(t, types.PlanTaskStatusSuccess, got.Status)
}

func TestGetTask_PreloadsSegments(t *testing.T) {
	setupTestDB(t)

	task := &types.PlanTask{
		TaskId:  "plan_test0002",
		ModelId: "kling-v1.6",
		Status:  types.PlanTaskStatusSuccess,
		Segments: []types.PlanSegment{
			{TaskId: "plan_test0002", SegmentId: "scene_1-seg-01", SegmentNumber: 1, SceneId: "scene_1", DurationSec: 5},
			{TaskId: "plan_test0002", SegmentId: "scene_1-seg-02", SegmentNumber: 2, SceneId: "scene_1", DurationSec: 5},
		},
	}
	assert.NoError(t, SaveTask(task))

	got, err := GetTask("plan_test0002")
	assert.NoError(t, err)
	assert.Len(t, got.Segments, 2)
	assert.Equal(t, "scene_1-seg-01", got.Segments[0].SegmentId)
}

func TestGetTask_NotFound(t *testing.T) {
	setupTestDB(t)

	_, err := GetTask("no-such-task")
	assert.Error(t, err)
}

func TestDeleteTask_RemovesSegments(t *testing.T) {
	setupTestDB(t)

	task := &types.PlanTask{
		TaskId: "plan_test0003",
		Status: types.PlanTaskStatusSuccess,
		Segments: []types.PlanSegment{
			{TaskId: "plan_test0003", SegmentId: "scene_1-seg-01"},
		},
	}
	assert.NoError(t, SaveTask(task))
	assert.NoError(t, DeleteTask("plan_test0003"))

	_, err := GetTask("plan_test0003")
	assert.Error(t, err)

	var count int64
	DB.Model(&types.PlanSegment{}).Where("task_id = ?", "plan_test0003").Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestMarkStaleTasks(t *testing.T) {
	setupTestDB(t)

	assert.NoError(t, SaveTask(&types.PlanTask{TaskId: "plan_stale1", Status: types.PlanTaskStatusProcessing}))
	assert.NoError(t, SaveTask(&types.PlanTask{TaskId: "plan_done1", Status: types.PlanTaskStatusSuccess}))

	affected, err := MarkStaleTasks()
	assert.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	stale, err := GetTask("plan_stale1")
	assert.NoError(t, err)
	assert.Equal(t, types.PlanTaskStatusFailed, stale.Status)
	assert.Contains(t, stale.FailReason, "interrupted by server restart")

	done, err := GetTask("plan_done1")
	assert.NoError(t, err)
	assert.Equal(t, types.PlanTaskStatusSuccess, done.Status)
}
