package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"eventmarket_app/internal/models"
	"eventmarket_app/internal/services"
	"eventmarket_app/internal/tasks"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Initialize Database
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := services.InitDB(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Redis is optional for the worker; without it the sweep skips the
	// cross-process correlation lock
	var cache *services.RedisCache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cache, err = services.NewRedisCache(redisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer cache.Close()
	}

	// Wire the reconcile sweep to its collaborators before registering
	notifier := services.NewNotifierService(db)
	tasks.ReconcileSweepTask.Processor = services.NewProcessorClient()
	tasks.ReconcileSweepTask.Reconciler = services.NewReconcileService(db, cache, notifier)

	// Initialize Task Registry
	tasks.DefineTasks()

	// Make sure the recurring sweep exists
	seedReconcileSweep(db)

	// Leave a startup marker in the task history
	seedStartupBreadcrumb(db)

	log.Println("Worker started. Waiting for next tick...")

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down worker...")
		cancel()
	}()

	// Ticker for 5 minutes; run once immediately for visibility
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	processScheduledTasks(ctx, db)

	for {
		select {
		case <-ticker.C:
			processScheduledTasks(ctx, db)
		case <-ctx.Done():
			return
		}
	}
}

// seedReconcileSweep creates the recurring sweep task on first run
func seedReconcileSweep(db *gorm.DB) {
	var count int64
	if err := db.Model(&models.ScheduledTask{}).
		Where("task_name = ? AND status = ?", tasks.ReconcileSweepTask.TaskID(), models.ScheduledTaskStatusActive).
		Count(&count).Error; err != nil {
		log.Printf("Failed to check for existing sweep task: %v", err)
		return
	}
	if count > 0 {
		return
	}

	interval := "FREQ=HOURLY;INTERVAL=1"
	task, err := tasks.BuildScheduledTask(tasks.ReconcileSweepTask.TaskID(), map[string]interface{}{}, time.Now(), &interval, models.ScheduledTaskTypeRecurring, 1)
	if err != nil {
		log.Printf("Failed to build sweep task: %v", err)
		return
	}
	if err := db.Create(task).Error; err != nil {
		log.Printf("Failed to seed sweep task: %v", err)
		return
	}
	log.Println("Seeded recurring reconcile_sweep task")
}

// seedStartupBreadcrumb queues a one-time log_info run so the task history
// records when the worker came up
func seedStartupBreadcrumb(db *gorm.DB) {
	task, err := tasks.BuildScheduledTask(tasks.LogInfoTask.TaskID(), map[string]interface{}{
		"message": "worker started",
	}, time.Now(), nil, models.ScheduledTaskTypeOneTime, 1)
	if err != nil {
		log.Printf("Failed to build startup breadcrumb: %v", err)
		return
	}
	if err := db.Create(task).Error; err != nil {
		log.Printf("Failed to queue startup breadcrumb: %v", err)
	}
}

func processScheduledTasks(ctx context.Context, db *gorm.DB) {
	log.Println("Checking for pending tasks...")

	var pendingTasks []models.ScheduledTask
	now := time.Now()
	if err := db.Where("status = ? AND due <= ?", models.ScheduledTaskStatusActive, now).Find(&pendingTasks).Error; err != nil {
		log.Printf("Error fetching pending tasks: %v", err)
		return
	}

	if len(pendingTasks) == 0 {
		log.Println("No pending tasks found.")
		return
	}

	log.Printf("Found %d pending tasks.", len(pendingTasks))

	for _, task := range pendingTasks {
		// Check context cancellation
		if ctx.Err() != nil {
			return
		}

		executeTask(ctx, db, task)
	}
}

func executeTask(ctx context.Context, db *gorm.DB, task models.ScheduledTask) {
	log.Printf("Processing task: %s (ID: %d)", task.TaskName, task.ID)

	handler, found := tasks.GetHandler(task.TaskName)
	if !found {
		log.Printf("Task handler not found for: %s. Marking as failure.", task.TaskName)

		now := time.Now()
		db.Model(&task).Updates(map[string]interface{}{
			"status":   models.ScheduledTaskStatusFailure,
			"last_run": &now,
		})

		history := models.ScheduledTaskHistory{
			ScheduledTaskID: task.ID,
			TaskName:        task.TaskName,
			RunAt:           now,
			Status:          "handler_not_found",
			AttemptNumber:   1,
			Arguments:       task.Arguments,
			Result:          map[string]interface{}{"error": "Handler not found"},
		}
		db.Create(&history)
		return
	}

	// Execute task
	startTime := time.Now()
	result, err := handler(ctx, db, task)
	duration := time.Since(startTime)
	runtimeMs := int(duration.Milliseconds())

	status := "success"
	var resultData map[string]interface{}
	if err != nil {
		status = "failure"
		resultData = map[string]interface{}{"error": err.Error()}
		log.Printf("Task %s failed: %v", task.TaskName, err)
	} else {
		resultData = result
		log.Printf("Task %s completed successfully.", task.TaskName)
	}

	// Create History
	history := models.ScheduledTaskHistory{
		ScheduledTaskID: task.ID,
		TaskName:        task.TaskName,
		RunAt:           startTime,
		Runtime:         runtimeMs,
		Status:          status,
		AttemptNumber:   1,
		Arguments:       task.Arguments,
		Result:          resultData,
	}
	db.Create(&history)

	// Update ScheduledTask
	taskUpdates := map[string]interface{}{
		"last_run": &startTime,
	}

	if status != "success" {
		taskUpdates["status"] = models.ScheduledTaskStatusFailure
	} else {
		switch task.TaskType {
		case models.ScheduledTaskTypeOneTime:
			taskUpdates["status"] = models.ScheduledTaskStatusDone
		case models.ScheduledTaskTypeRecurring:
			nextDue := task.NextDue()
			// check if the next due is a future date, to avoid the task from being executed repeatedly
			isNextDueFuture := nextDue.After(task.Due)
			if isNextDueFuture {
				taskUpdates["status"] = models.ScheduledTaskStatusActive
				taskUpdates["due"] = nextDue
			} else {
				taskUpdates["status"] = models.ScheduledTaskStatusDone
			}
		}
	}

	db.Model(&task).Updates(taskUpdates)
}
