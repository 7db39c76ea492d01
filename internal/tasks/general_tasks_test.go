package tasks

import (
	"context"
	"testing"
	"time"

	"eventmarket_app/internal/models"
)

func TestLogInfoEchoesMessage(t *testing.T) {
	db := newTaskTestDB(t)

	// Same shape the worker queues as its startup breadcrumb
	task, err := BuildScheduledTask(LogInfoTask.TaskID(), map[string]interface{}{
		"message": "worker started",
	}, time.Now(), nil, models.ScheduledTaskTypeOneTime, 1)
	if err != nil {
		t.Fatalf("BuildScheduledTask() error = %v", err)
	}

	result, execErr := LogInfoTask.HandleExecution(context.Background(), db, *task)
	if execErr != nil {
		t.Fatalf("HandleExecution() error = %v", execErr)
	}
	if result["message"] != "worker started" {
		t.Errorf("message = %v; want worker started", result["message"])
	}
	if result["status"] != "success" {
		t.Errorf("status = %v; want success", result["status"])
	}
}

func TestLogInfoToleratesMissingMessage(t *testing.T) {
	db := newTaskTestDB(t)

	task := models.ScheduledTask{TaskName: LogInfoTask.TaskID(), Arguments: map[string]interface{}{}}
	result, err := LogInfoTask.HandleExecution(context.Background(), db, task)
	if err != nil {
		t.Fatalf("HandleExecution() error = %v", err)
	}
	if result["status"] != "success" {
		t.Errorf("status = %v; want success", result["status"])
	}
}
