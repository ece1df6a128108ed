package reconcile

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"yelp_data_service/internal/app/model"
	"yelp_data_service/internal/app/testutil"
)

func reviewCount(t *testing.T, gdb *gorm.DB, userID string) *int {
	t.Helper()
	var u model.User
	if err := gdb.First(&u, "user_id = ?", userID).Error; err != nil {
		t.Fatalf("取得失敗: %v", err)
	}
	return u.ReviewCount
}

func seedReviewsFor(t *testing.T, gdb *gorm.DB, userID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-r%d", userID, i)
		testutil.Seed(t, gdb, testutil.Review(id, userID, "b1", testutil.Day(2020, time.January, 1+i)))
	}
}

func TestRunFixesDrift(t *testing.T) {
	gdb := testutil.OpenDB(t)
	testutil.Seed(t, gdb,
		testutil.User("U1", "Stale", 50),
		testutil.User("U2", "Quiet", 0),
		testutil.User("U3", "Exact", 5),
	)
	seedReviewsFor(t, gdb, "U1", 3)
	seedReviewsFor(t, gdb, "U3", 5)

	report, err := New(gdb, zap.NewNop(), 10).Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Before != 1 {
		t.Fatalf("before: got %d, want 1", report.Before)
	}
	if len(report.Sample) != 1 || report.Sample[0].UserID != "U1" || report.Sample[0].ActualCount != 3 {
		t.Fatalf("unexpected sample %+v", report.Sample)
	}
	if report.Sample[0].Difference() != 47 {
		t.Fatalf("diff: got %d, want 47", report.Sample[0].Difference())
	}
	if report.UpdatedWithReviews != 1 || report.UpdatedToZero != 0 {
		t.Fatalf("unexpected updates %+v", report)
	}
	if report.Remaining != 0 {
		t.Fatalf("remaining: got %d, want 0", report.Remaining)
	}

	for id, want := range map[string]int{"U1": 3, "U2": 0, "U3": 5} {
		got := reviewCount(t, gdb, id)
		if got == nil || *got != want {
			t.Fatalf("%s: review_count %v, want %d", id, got, want)
		}
	}
}

func TestRunIsIdempotent(t *testing.T) {
	gdb := testutil.OpenDB(t)
	testutil.Seed(t, gdb,
		testutil.User("U1", "Stale", 50),
		testutil.User("U2", "Ghost", 7),
		&model.User{UserID: "U3", Name: testutil.Ptr("Unknown")},
	)
	seedReviewsFor(t, gdb, "U1", 2)
	// user_id が NULL のレビューがあっても 0 件ユーザーの修正を妨げない
	testutil.Seed(t, gdb, testutil.Review("anon", "", "b1", testutil.Day(2020, time.March, 1)))

	r := New(gdb, zap.NewNop(), 0)

	first, err := r.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Before != 3 {
		t.Fatalf("before: got %d, want 3", first.Before)
	}
	if first.UpdatedWithReviews != 1 || first.UpdatedToZero != 2 {
		t.Fatalf("unexpected updates %+v", first)
	}
	if first.Remaining != 0 {
		t.Fatalf("remaining after first run: %d", first.Remaining)
	}
	// 差の大きい順
	if first.Sample[0].UserID != "U1" || first.Sample[1].UserID != "U2" {
		t.Fatalf("unexpected sample order %+v", first.Sample)
	}

	second, err := r.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Before != 0 || second.Updated() != 0 || second.Remaining != 0 {
		t.Fatalf("second run should be a no-op, got %+v", second)
	}

	if got := reviewCount(t, gdb, "U3"); got == nil || *got != 0 {
		t.Fatalf("U3: review_count %v, want 0", got)
	}
}

func TestDryRunDoesNotMutate(t *testing.T) {
	gdb := testutil.OpenDB(t)
	testutil.Seed(t, gdb, testutil.User("U1", "Stale", 50))
	seedReviewsFor(t, gdb, "U1", 1)

	report, err := New(gdb, zap.NewNop(), 5).Run(context.Background(), Options{DryRun: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.DryRun || report.Before != 1 || report.Remaining != 1 || report.Updated() != 0 {
		t.Fatalf("unexpected dry-run report %+v", report)
	}
	if got := reviewCount(t, gdb, "U1"); got == nil || *got != 50 {
		t.Fatalf("dry run changed review_count to %v", got)
	}
}

func TestFailedUpdateRollsBackBothPhases(t *testing.T) {
	gdb := testutil.OpenDB(t)
	testutil.Seed(t, gdb,
		testutil.User("U1", "Stale", 50),
		testutil.User("U2", "Ghost", 7),
	)
	seedReviewsFor(t, gdb, "U1", 2)

	// 2段階目 (0件ユーザーの更新) だけが失敗するトリガー
	err := gdb.Exec(`
CREATE TRIGGER fail_zero BEFORE UPDATE OF review_count ON yelp_users
WHEN NEW.review_count = 0
BEGIN
	SELECT RAISE(ABORT, 'boom');
END`).Error
	if err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	core, logs := observer.New(zap.InfoLevel)
	_, err = New(gdb, zap.New(core), 5).Run(context.Background(), Options{})
	if err == nil {
		t.Fatal("expected error")
	}

	// 1段階目の更新も残っていないこと
	if got := reviewCount(t, gdb, "U1"); got == nil || *got != 50 {
		t.Fatalf("U1 should be rolled back to 50, got %v", got)
	}
	if got := reviewCount(t, gdb, "U2"); got == nil || *got != 7 {
		t.Fatalf("U2 should stay 7, got %v", got)
	}
	if logs.FilterMessage("review_count drift before fix").Len() != 1 {
		t.Fatal("drift should be reported before the update")
	}
}

func TestRemainingDriftIsReportedNotFailed(t *testing.T) {
	gdb := testutil.OpenDB(t)
	testutil.Seed(t, gdb, testutil.User("U1", "Stale", 50))
	seedReviewsFor(t, gdb, "U1", 3)

	// 修正直後に別の書き込みが入ったことにする
	err := gdb.Exec(`
CREATE TRIGGER concurrent_writer AFTER UPDATE OF review_count ON yelp_users
WHEN NEW.review_count = 3
BEGIN
	UPDATE yelp_users SET review_count = 9 WHERE user_id = NEW.user_id;
END`).Error
	if err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	core, logs := observer.New(zap.InfoLevel)
	report, err := New(gdb, zap.New(core), 5).Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("remaining drift must not be an error: %v", err)
	}
	if report.Before != 1 || report.UpdatedWithReviews != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Remaining != 1 {
		t.Fatalf("remaining: got %d, want 1", report.Remaining)
	}

	remains := logs.FilterMessage("review_count drift remains after fix").AllUntimed()
	if len(remains) != 1 {
		t.Fatalf("expected 1 remaining-drift log, got %d", len(remains))
	}
	if remains[0].Level != zap.WarnLevel {
		t.Fatalf("remaining drift should be logged at warn, got %v", remains[0].Level)
	}
	if logs.FilterMessage("all review counts are accurate").Len() != 0 {
		t.Fatal("should not report accurate counts while drift remains")
	}
}

// 本番のダンプと同じく reviews.user_id に索引がない状態で、
// 件数のあるユーザーとないユーザーがまとめて修正されること
func TestRunWithoutUserIDIndex(t *testing.T) {
	gdb := testutil.OpenDB(t)
	if gdb.Migrator().HasIndex(&model.Review{}, "idx_reviews_user_id") {
		t.Fatal("reviews.user_id should not be indexed")
	}
	testutil.Seed(t, gdb,
		testutil.User("U1", "Stale", 50),
		testutil.User("U2", "Low", 1),
		&model.User{UserID: "U3", Name: testutil.Ptr("Unknown")},
		testutil.User("U4", "Ghost", 2),
	)
	seedReviewsFor(t, gdb, "U1", 4)
	seedReviewsFor(t, gdb, "U2", 2)
	seedReviewsFor(t, gdb, "U3", 1)
	// yelp_users にいないユーザーのレビューは何も更新しない
	seedReviewsFor(t, gdb, "nobody", 2)

	report, err := New(gdb, zap.NewNop(), 10).Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.UpdatedWithReviews != 3 || report.UpdatedToZero != 1 || report.Remaining != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	for id, want := range map[string]int{"U1": 4, "U2": 2, "U3": 1, "U4": 0} {
		got := reviewCount(t, gdb, id)
		if got == nil || *got != want {
			t.Fatalf("%s: review_count %v, want %d", id, got, want)
		}
	}
}

func TestCanceledContext(t *testing.T) {
	gdb := testutil.OpenDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(gdb, zap.NewNop(), 5).Run(ctx, Options{}); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
