package services

import (
	"testing"

	"kvitto/internal/models"
	"kvitto/internal/testutil"
)

func TestCreateTag(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTagService(db)

		tag, err := svc.CreateTag("reimbursable")
		testutil.AssertNoError(t, err)

		if tag.ID == 0 {
			t.Fatal("expected non-zero tag ID")
		}
	})

	t.Run("duplicate_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTagService(db)

		_, err := svc.CreateTag("work")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateTag("work")
		testutil.AssertAppError(t, err, "DUPLICATE_TAG")
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTagService(db)

		_, err := svc.CreateTag("")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestDeleteTag(t *testing.T) {
	t.Run("removes_receipt_links", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTagService(db)

		user := testutil.CreateTestUser(t, db)
		tag := testutil.CreateTestTag(t, db)
		receipt := testutil.CreateTestReceipt(t, db, user.ID, "10.00")

		link := &models.ReceiptTag{ReceiptID: receipt.ID, TagID: tag.ID}
		testutil.AssertNoError(t, db.Create(link).Error)

		testutil.AssertNoError(t, svc.DeleteTag(tag.ID))

		var linkCount int64
		db.Model(&models.ReceiptTag{}).Where("tag_id = ?", tag.ID).Count(&linkCount)
		if linkCount != 0 {
			t.Errorf("expected tag links to be removed, found %d", linkCount)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTagService(db)

		err := svc.DeleteTag(9999)
		testutil.AssertAppError(t, err, "TAG_NOT_FOUND")
	})
}
