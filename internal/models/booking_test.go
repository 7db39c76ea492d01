package models

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newBookingTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&User{}, &Event{}, &Booking{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func TestBookingGetsPublicRefOnCreate(t *testing.T) {
	db := newBookingTestDB(t)

	booking := Booking{UserID: 1, EventID: 1}
	if err := db.Create(&booking).Error; err != nil {
		t.Fatalf("failed to create booking: %v", err)
	}
	if booking.UUID == "" {
		t.Fatal("booking UUID is empty; want a generated public ref")
	}
	if _, err := uuid.Parse(booking.UUID); err != nil {
		t.Errorf("booking UUID %q is not a valid uuid: %v", booking.UUID, err)
	}

	var stored Booking
	if err := db.First(&stored, booking.ID).Error; err != nil {
		t.Fatalf("failed to reload booking: %v", err)
	}
	if stored.UUID != booking.UUID {
		t.Errorf("stored UUID = %q; want %q", stored.UUID, booking.UUID)
	}
}

func TestBookingKeepsPresetPublicRef(t *testing.T) {
	db := newBookingTestDB(t)

	booking := Booking{UserID: 1, EventID: 2, UUID: "bk-fixed"}
	if err := db.Create(&booking).Error; err != nil {
		t.Fatalf("failed to create booking: %v", err)
	}
	if booking.UUID != "bk-fixed" {
		t.Errorf("booking UUID = %q; want the preset ref kept", booking.UUID)
	}
}
