package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avasilyev/shelfserve/internal/scheduler"
	"github.com/avasilyev/shelfserve/internal/settingsstore"
	"github.com/avasilyev/shelfserve/internal/tasks"
)

// AdminController exposes runtime configuration of cover storage and the
// cache cleanup schedule.
type AdminController struct {
	settingsStore *settingsstore.SettingsStore
	scheduler     *scheduler.CoverCleanupScheduler
	taskClient    *tasks.Client
}

func NewAdminController(settingsStore *settingsstore.SettingsStore, sched *scheduler.CoverCleanupScheduler, taskClient *tasks.Client) *AdminController {
	return &AdminController{
		settingsStore: settingsStore,
		scheduler:     sched,
		taskClient:    taskClient,
	}
}

// GetCleanupSettings returns the effective cleanup configuration, the last
// run outcome and the next scheduled run.
// GET /api/admin/covers/cleanup
func (controller *AdminController) GetCleanupSettings(c *gin.Context) {
	info := controller.settingsStore.GetCoverCleanupConfigInfo()
	status := controller.settingsStore.GetCoverCleanupStatus()

	response := gin.H{
		"config":               info,
		"status":               status,
		"schedule_description": settingsstore.GetCronDescription(info.Schedule),
	}

	if controller.scheduler != nil {
		response["scheduler_running"] = controller.scheduler.IsRunning()
		if next := controller.scheduler.GetNextRunTime(); next != nil {
			response["next_run_at"] = next
		}
	}

	c.JSON(http.StatusOK, response)
}

type updateCleanupRequest struct {
	Enabled  *bool   `json:"enabled"`
	Schedule *string `json:"schedule"`
}

// UpdateCleanupSettings saves cleanup overrides to the database and
// reschedules the cron job.
// PUT /api/admin/covers/cleanup
func (controller *AdminController) UpdateCleanupSettings(c *gin.Context) {
	var req updateCleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if req.Schedule != nil {
		if err := settingsstore.ValidateCronSchedule(*req.Schedule); err != nil {
			respondBadRequest(c, "invalid cron schedule: "+err.Error())
			return
		}
		if err := controller.settingsStore.SetCoverCleanupSchedule(*req.Schedule); err != nil {
			respondInternalError(c, err, "save cleanup schedule")
			return
		}
	}

	if req.Enabled != nil {
		if err := controller.settingsStore.SetCoverCleanupEnabled(*req.Enabled); err != nil {
			respondInternalError(c, err, "save cleanup enabled")
			return
		}
	}

	if controller.scheduler != nil {
		if err := controller.scheduler.Reschedule(); err != nil {
			respondInternalError(c, err, "reschedule cleanup")
			return
		}
	}

	respondSuccess(c, "cleanup settings updated")
}

// ResetCleanupSettings clears database overrides, reverting to
// environment/default values.
// POST /api/admin/covers/cleanup/reset
func (controller *AdminController) ResetCleanupSettings(c *gin.Context) {
	if err := controller.settingsStore.ClearCoverCleanupSettings(); err != nil {
		respondInternalError(c, err, "reset cleanup settings")
		return
	}

	if controller.scheduler != nil {
		if err := controller.scheduler.Reschedule(); err != nil {
			respondInternalError(c, err, "reschedule cleanup")
			return
		}
	}

	respondSuccess(c, "cleanup settings reset")
}

// RunCleanupNow enqueues an immediate cleanup task.
// POST /api/admin/covers/cleanup/run
func (controller *AdminController) RunCleanupNow(c *gin.Context) {
	if controller.scheduler == nil {
		respondError(c, http.StatusServiceUnavailable, "task queue not available")
		return
	}

	if err := controller.scheduler.RunNow(); err != nil {
		respondInternalError(c, err, "run cleanup")
		return
	}

	respondAccepted(c, "cleanup task enqueued", nil)
}

// WarmCovers enqueues a cover warming task, optionally for a single book.
// POST /api/admin/covers/warm
func (controller *AdminController) WarmCovers(c *gin.Context) {
	if controller.taskClient == nil {
		respondError(c, http.StatusServiceUnavailable, "task queue not available")
		return
	}

	task := tasks.WarmCoverCacheTask{BookUUID: c.Query("book_uuid")}
	ids, err := controller.taskClient.Add(task).Save()
	if err != nil {
		respondInternalError(c, err, "enqueue cover warming")
		return
	}

	respondAccepted(c, "cover warming enqueued", gin.H{"task_ids": ids})
}

// GetStorageSettings returns the remote cover storage configuration.
// GET /api/admin/covers/storage
func (controller *AdminController) GetStorageSettings(c *gin.Context) {
	c.JSON(http.StatusOK, controller.settingsStore.GetRemoteStorageConfig())
}

type updateStorageRequest struct {
	Enabled *bool   `json:"enabled"`
	BaseURL *string `json:"base_url"`
}

// UpdateStorageSettings toggles remote cover storage at runtime.
// PUT /api/admin/covers/storage
func (controller *AdminController) UpdateStorageSettings(c *gin.Context) {
	var req updateStorageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if req.BaseURL != nil {
		if err := controller.settingsStore.SetRemoteBaseURL(*req.BaseURL); err != nil {
			respondInternalError(c, err, "save storage base url")
			return
		}
	}

	if req.Enabled != nil {
		if err := controller.settingsStore.SetUseRemoteStorage(*req.Enabled); err != nil {
			respondInternalError(c, err, "save storage enabled")
			return
		}
	}

	respondSuccess(c, "storage settings updated")
}
