package model

import (
	"time"
)

// Business は business テーブルの1行です。
// attributes / categories / hours はダンプのエンコード済みテキストをそのまま保持します。
type Business struct {
	BusinessID  string   `gorm:"primaryKey" json:"business_id"`
	Name        *string  `json:"name"`
	Address     *string  `json:"address"`
	City        *string  `json:"city"`
	State       *string  `json:"state"`
	PostalCode  *string  `json:"postal_code"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Stars       *float64 `json:"stars"`
	ReviewCount *int     `json:"review_count"`
	IsOpen      *int     `json:"is_open"`
	Attributes  *string  `json:"attributes"`
	Categories  *string  `json:"categories"`
	Hours       *string  `json:"hours"`
}

func (Business) TableName() string {
	return "business"
}

// Review は reviews テーブルの1行です。
// UserID / BusinessID は外部キー制約のない参照で、存在しない行を指すことがあります。
type Review struct {
	ReviewID   string     `gorm:"primaryKey" json:"review_id"`
	UserID     *string    `json:"user_id"`
	BusinessID *string    `json:"business_id"`
	Stars      *float64   `json:"stars"`
	Useful     *int       `json:"useful"`
	Funny      *int       `json:"funny"`
	Cool       *int       `json:"cool"`
	Text       *string    `json:"text"`
	Date       *time.Time `json:"date"`
	Year       *int       `json:"year"`
	Month      *int       `json:"month"`
}

func (Review) TableName() string {
	return "reviews"
}

// User は yelp_users テーブルの1行です。
// ReviewCount はキャッシュされた件数で、reviews の実件数とずれることがあります。
type User struct {
	UserID            string     `gorm:"primaryKey" json:"user_id"`
	Name              *string    `json:"name"`
	ReviewCount       *int       `json:"review_count"`
	YelpingSince      *time.Time `json:"yelping_since"`
	Friends           *string    `json:"friends"`
	Useful            *int       `json:"useful"`
	Funny             *int       `json:"funny"`
	Cool              *int       `json:"cool"`
	Fans              *int       `json:"fans"`
	Elite             *string    `json:"elite"`
	AverageStars      *float64   `json:"average_stars"`
	ComplimentHot     *int       `json:"compliment_hot"`
	ComplimentMore    *int       `json:"compliment_more"`
	ComplimentProfile *int       `json:"compliment_profile"`
	ComplimentCute    *int       `json:"compliment_cute"`
	ComplimentList    *int       `json:"compliment_list"`
	ComplimentNote    *int       `json:"compliment_note"`
	ComplimentPlain   *int       `json:"compliment_plain"`
	ComplimentCool    *int       `json:"compliment_cool"`
	ComplimentFunny   *int       `json:"compliment_funny"`
	ComplimentWriter  *int       `json:"compliment_writer"`
	ComplimentPhotos  *int       `json:"compliment_photos"`
}

func (User) TableName() string {
	return "yelp_users"
}

// Tip は tips テーブルの1行です。主キーは (user_id, business_id)。
type Tip struct {
	UserID          string     `gorm:"primaryKey" json:"user_id"`
	BusinessID      string     `gorm:"primaryKey" json:"business_id"`
	Text            *string    `json:"text"`
	Date            *time.Time `json:"date"`
	ComplimentCount *int       `json:"compliment_count"`
	Year            *int       `json:"year"`
}

func (Tip) TableName() string {
	return "tips"
}

// Checkin は checkins テーブルの1行です。
// Date は元データのまま文字列で、日時型には変換しません。
type Checkin struct {
	BusinessID string `gorm:"primaryKey" json:"business_id"`
	Date       string `gorm:"primaryKey" json:"date"`
}

func (Checkin) TableName() string {
	return "checkins"
}

// ReviewWithNames はユーザー名・店舗名を外部結合で付与したレビューです。
// 参照先が存在しない場合、名前は null になります。
type ReviewWithNames struct {
	Review
	UserName     *string `json:"user_name"`
	BusinessName *string `json:"business_name"`
}

// TipWithNames はユーザー名・店舗名を付与したチップです。
type TipWithNames struct {
	Tip
	UserName     *string `json:"user_name"`
	BusinessName *string `json:"business_name"`
}

// ReviewsWithoutNames は名前なしの結果を付与済みの形に揃えます。
func ReviewsWithoutNames(reviews []Review) []ReviewWithNames {
	out := make([]ReviewWithNames, len(reviews))
	for i, r := range reviews {
		out[i] = ReviewWithNames{Review: r}
	}
	return out
}

// TipsWithoutNames は ReviewsWithoutNames のチップ版です。
func TipsWithoutNames(tips []Tip) []TipWithNames {
	out := make([]TipWithNames, len(tips))
	for i, t := range tips {
		out[i] = TipWithNames{Tip: t}
	}
	return out
}
