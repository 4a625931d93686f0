package storage

import (
	"errors"

	"gorm.io/gorm"

	"storyboard-ai/internal/types"
)

func SaveTask(task *types.PlanTask) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	// Upsert: TaskId 唯一但不是主键，先按 TaskId 查再决定建或改
	var existing types.PlanTask
	result := DB.Where("task_id = ?", task.TaskId).First(&existing)

	if result.Error == nil {
		task.Id = existing.Id // Preserve ID
		return DB.Save(task).Error
	} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return DB.Create(task).Error
	}
	return result.Error
}

func GetTask(taskId string) (*types.PlanTask, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var task types.PlanTask
	if err := DB.Preload("Segments").Where("task_id = ?", taskId).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func GetTaskHistory(limit int) ([]types.PlanTask, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var tasks []types.PlanTask
	if err := DB.Preload("Segments").Order("create_time desc").Limit(limit).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func DeleteTask(taskId string) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	if err := DB.Where("task_id = ?", taskId).Delete(&types.PlanSegment{}).Error; err != nil {
		return err
	}
	return DB.Where("task_id = ?", taskId).Delete(&types.PlanTask{}).Error
}

// MarkStaleTasks marks all "processing" tasks (status=1) as "failed" (status=3)
// This should be called on server startup to clean up zombie tasks
func MarkStaleTasks() (int64, error) {
	if DB == nil {
		return 0, errors.New("database not initialized")
	}
	result := DB.Model(&types.PlanTask{}).
		Where("status = ?", types.PlanTaskStatusProcessing).
		Updates(map[string]interface{}{
			"status":      types.PlanTaskStatusFailed,
			"fail_reason": "服务重启，任务被中断 Task interrupted by server restart",
			"status_msg":  "任务超时/中断 Task Timeout/Interrupted",
		})
	return result.RowsAffected, result.Error
}
