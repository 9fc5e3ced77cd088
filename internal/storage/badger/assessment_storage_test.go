package badger

import (
	"context"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/valeo/internal/interfaces"
	"github.com/ternarybob/valeo/internal/models"
)

func TestAssessmentStorageSaveAndGet(t *testing.T) {
	db := newTestDB(t)
	storage := NewAssessmentStorage(db, arbor.NewLogger())
	ctx := context.Background()

	assessment := &models.Assessment{
		ID:            "asmt-1",
		UserID:        "user-1",
		BusinessName:  "Acme Traders",
		Industry:      "retail",
		FileName:      "q1.csv",
		FileMimeType:  "text/csv",
		FileEncrypted: []byte("ciphertext"),
		SummaryJSON:   []byte(`{"overall_score":61.5}`),
		OverallScore:  61.5,
		RiskLevel:     models.RiskLevelMedium,
	}
	if err := storage.SaveAssessment(ctx, assessment); err != nil {
		t.Fatalf("Failed to save assessment: %v", err)
	}

	got, err := storage.GetAssessment(ctx, "user-1", "asmt-1")
	if err != nil {
		t.Fatalf("Failed to get assessment: %v", err)
	}
	if got.BusinessName != "Acme Traders" {
		t.Errorf("Expected business name Acme Traders, got %s", got.BusinessName)
	}
	if string(got.FileEncrypted) != "ciphertext" {
		t.Error("Expected encrypted payload to round-trip")
	}
	if got.RiskLevel != models.RiskLevelMedium {
		t.Errorf("Expected risk level Medium, got %s", got.RiskLevel)
	}

	// Records belonging to another user are reported as not found
	if _, err := storage.GetAssessment(ctx, "user-2", "asmt-1"); err != interfaces.ErrAssessmentNotFound {
		t.Errorf("Expected ErrAssessmentNotFound for foreign user, got %v", err)
	}
	if _, err := storage.GetAssessment(ctx, "user-1", "missing"); err != interfaces.ErrAssessmentNotFound {
		t.Errorf("Expected ErrAssessmentNotFound for missing ID, got %v", err)
	}
}

func TestAssessmentStorageListNewestFirst(t *testing.T) {
	db := newTestDB(t)
	storage := NewAssessmentStorage(db, arbor.NewLogger())
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"asmt-old", "asmt-mid", "asmt-new"} {
		assessment := &models.Assessment{
			ID:        id,
			UserID:    "user-1",
			FileName:  "data.csv",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := storage.SaveAssessment(ctx, assessment); err != nil {
			t.Fatalf("Failed to save %s: %v", id, err)
		}
	}
	// A different user's record must not appear in the listing
	other := &models.Assessment{ID: "asmt-other", UserID: "user-2", FileName: "data.csv"}
	if err := storage.SaveAssessment(ctx, other); err != nil {
		t.Fatalf("Failed to save other user's assessment: %v", err)
	}

	list, err := storage.ListAssessments(ctx, "user-1", 0, 0)
	if err != nil {
		t.Fatalf("Failed to list assessments: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("Expected 3 assessments, got %d", len(list))
	}
	if list[0].ID != "asmt-new" || list[1].ID != "asmt-mid" || list[2].ID != "asmt-old" {
		t.Errorf("Expected newest-first order, got %s, %s, %s", list[0].ID, list[1].ID, list[2].ID)
	}

	page, err := storage.ListAssessments(ctx, "user-1", 1, 1)
	if err != nil {
		t.Fatalf("Failed to list with limit/offset: %v", err)
	}
	if len(page) != 1 || page[0].ID != "asmt-mid" {
		t.Errorf("Expected page of [asmt-mid], got %v", page)
	}

	empty, err := storage.ListAssessments(ctx, "user-3", 0, 0)
	if err != nil {
		t.Fatalf("Failed to list for unknown user: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Expected empty list for unknown user, got %d", len(empty))
	}
}

func TestAssessmentStorageDelete(t *testing.T) {
	db := newTestDB(t)
	storage := NewAssessmentStorage(db, arbor.NewLogger())
	ctx := context.Background()

	assessment := &models.Assessment{ID: "asmt-1", UserID: "user-1", FileName: "data.csv"}
	if err := storage.SaveAssessment(ctx, assessment); err != nil {
		t.Fatalf("Failed to save assessment: %v", err)
	}

	// Foreign user cannot delete
	if err := storage.DeleteAssessment(ctx, "user-2", "asmt-1"); err != interfaces.ErrAssessmentNotFound {
		t.Errorf("Expected ErrAssessmentNotFound for foreign user, got %v", err)
	}

	if err := storage.DeleteAssessment(ctx, "user-1", "asmt-1"); err != nil {
		t.Fatalf("Failed to delete assessment: %v", err)
	}
	if _, err := storage.GetAssessment(ctx, "user-1", "asmt-1"); err != interfaces.ErrAssessmentNotFound {
		t.Errorf("Expected assessment gone after delete, got %v", err)
	}
	if err := storage.DeleteAssessment(ctx, "user-1", "asmt-1"); err != interfaces.ErrAssessmentNotFound {
		t.Errorf("Expected ErrAssessmentNotFound on second delete, got %v", err)
	}
}

func TestAssessmentStorageDeleteBefore(t *testing.T) {
	db := newTestDB(t)
	storage := NewAssessmentStorage(db, arbor.NewLogger())
	ctx := context.Background()

	now := time.Now()
	records := []*models.Assessment{
		{ID: "asmt-ancient", UserID: "user-1", FileName: "a.csv", CreatedAt: now.Add(-400 * 24 * time.Hour)},
		{ID: "asmt-stale", UserID: "user-2", FileName: "b.csv", CreatedAt: now.Add(-366 * 24 * time.Hour)},
		{ID: "asmt-fresh", UserID: "user-1", FileName: "c.csv", CreatedAt: now.Add(-time.Hour)},
	}
	for _, record := range records {
		if err := storage.SaveAssessment(ctx, record); err != nil {
			t.Fatalf("Failed to save %s: %v", record.ID, err)
		}
	}

	cutoff := now.Add(-365 * 24 * time.Hour)
	deleted, err := storage.DeleteAssessmentsBefore(ctx, cutoff)
	if err != nil {
		t.Fatalf("Failed to delete expired assessments: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 deleted, got %d", deleted)
	}

	count, err := storage.CountAssessments(ctx)
	if err != nil {
		t.Fatalf("Failed to count assessments: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 remaining, got %d", count)
	}
	if _, err := storage.GetAssessment(ctx, "user-1", "asmt-fresh"); err != nil {
		t.Errorf("Expected fresh assessment to survive, got %v", err)
	}
}
