// Package testutil はテスト用のインメモリ DB とフィクスチャを提供します。
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"yelp_data_service/internal/app/db"
	"yelp_data_service/internal/app/model"
)

// OpenDB は5テーブルを作成済みのインメモリ SQLite を返します。
// テストごとに別の DB になります。
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: db.NewGormLogger(zap.NewNop(), false),
	})
	if err != nil {
		t.Fatalf("DB接続失敗: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("DB取得失敗: %v", err)
	}
	// 本番と同じく1リクエスト1接続で動くことを確認するため、接続は1本に絞る
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	err = gdb.AutoMigrate(&model.Business{}, &model.Review{}, &model.User{}, &model.Tip{}, &model.Checkin{})
	if err != nil {
		t.Fatalf("マイグレーション失敗: %v", err)
	}
	return gdb
}

// Seed は行をまとめて登録します。
func Seed(t testing.TB, gdb *gorm.DB, rows ...any) {
	t.Helper()
	for _, row := range rows {
		if err := gdb.Create(row).Error; err != nil {
			t.Fatalf("登録失敗 (%T): %v", row, err)
		}
	}
}

// Ptr は値のポインタを返します。
func Ptr[T any](v T) *T {
	return &v
}

// Day は UTC の日付を返します。
func Day(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
	return &d
}

// Review はテスト用のレビューを作ります。userID/businessID が空なら NULL。
func Review(id, userID, businessID string, date *time.Time) *model.Review {
	r := &model.Review{ReviewID: id, Date: date, Stars: Ptr(4.0), Text: Ptr("text of " + id)}
	if userID != "" {
		r.UserID = Ptr(userID)
	}
	if businessID != "" {
		r.BusinessID = Ptr(businessID)
	}
	return r
}

// User はテスト用のユーザーを作ります。
func User(id, name string, reviewCount int) *model.User {
	return &model.User{UserID: id, Name: Ptr(name), ReviewCount: Ptr(reviewCount)}
}

// Business はテスト用の店舗を作ります。
func Business(id, name, city, state string, stars float64) *model.Business {
	return &model.Business{
		BusinessID: id,
		Name:       Ptr(name),
		City:       Ptr(city),
		State:      Ptr(state),
		Stars:      Ptr(stars),
	}
}
