package tasks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"eventmarket_app/internal/models"
	"eventmarket_app/internal/services"
)

func newTaskTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := services.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func TestReconcileSweepResolvesStalePayment(t *testing.T) {
	db := newTaskTestDB(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payment_intents/pi_stale" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"pi_stale","status":"succeeded","amount":10000,"currency":"USD"}`))
	}))
	defer srv.Close()
	t.Setenv("PROCESSOR_BASE_URL", srv.URL)

	payment := models.Payment{PaymentIntentRef: "pi_stale", Amount: 10000, Currency: "USD", Status: models.PaymentStatusPending}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("failed to seed payment: %v", err)
	}
	// Age the payment past the sweep threshold
	old := time.Now().Add(-2 * time.Hour)
	if err := db.Model(&payment).Update("created_at", old).Error; err != nil {
		t.Fatalf("failed to age payment: %v", err)
	}

	sweep := &ReconcileSweepTaskDef{
		Processor:  services.NewProcessorClient(),
		Reconciler: services.NewReconcileService(db, nil, services.NewNotifierService(db)),
	}

	result, err := sweep.HandleExecution(context.Background(), db, models.ScheduledTask{})
	if err != nil {
		t.Fatalf("HandleExecution() error = %v", err)
	}
	if result["resolved"] != 1 {
		t.Errorf("resolved = %v; want 1", result["resolved"])
	}

	var got models.Payment
	db.First(&got, payment.ID)
	if got.Status != models.PaymentStatusPaid {
		t.Errorf("payment status = %s; want PAID", got.Status)
	}
}

func TestReconcileSweepLeavesFreshAndProcessingPaymentsAlone(t *testing.T) {
	db := newTaskTestDB(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"pi_slow","status":"processing","amount":500,"currency":"USD"}`))
	}))
	defer srv.Close()
	t.Setenv("PROCESSOR_BASE_URL", srv.URL)

	fresh := models.Payment{PaymentIntentRef: "pi_fresh", Amount: 500, Currency: "USD", Status: models.PaymentStatusPending}
	db.Create(&fresh)

	slow := models.Payment{PaymentIntentRef: "pi_slow", Amount: 500, Currency: "USD", Status: models.PaymentStatusPending}
	db.Create(&slow)
	db.Model(&slow).Update("created_at", time.Now().Add(-2*time.Hour))

	sweep := &ReconcileSweepTaskDef{
		Processor:  services.NewProcessorClient(),
		Reconciler: services.NewReconcileService(db, nil, services.NewNotifierService(db)),
	}

	result, err := sweep.HandleExecution(context.Background(), db, models.ScheduledTask{})
	if err != nil {
		t.Fatalf("HandleExecution() error = %v", err)
	}
	if result["scanned"] != 1 {
		t.Errorf("scanned = %v; want 1 (fresh payment must be excluded)", result["scanned"])
	}
	if result["still_pending"] != 1 {
		t.Errorf("still_pending = %v; want 1", result["still_pending"])
	}

	var n int64
	db.Model(&models.Payment{}).Where("status = ?", models.PaymentStatusPending).Count(&n)
	if n != 2 {
		t.Errorf("pending payments = %d; want 2", n)
	}
}
