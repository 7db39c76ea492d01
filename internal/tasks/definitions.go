package tasks

// DefineTasks registers all available tasks
func DefineTasks() {
	// Register general tasks
	RegisterHandler(LogInfoTask.TaskID(), LogInfoTask.HandleExecution)

	// Register notification tasks
	RegisterHandler(SendNotificationTask.TaskID(), SendNotificationTask.HandleExecution)

	// Register reconciliation tasks
	RegisterHandler(ReconcileSweepTask.TaskID(), ReconcileSweepTask.HandleExecution)
}
