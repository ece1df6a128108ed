package model

import "slices"

// Kind はエンティティの種類です。
type Kind string

const (
	KindBusiness Kind = "business"
	KindReview   Kind = "review"
	KindUser     Kind = "user"
	KindTip      Kind = "tip"
	KindCheckin  Kind = "checkin"
)

// Entity はテーブル名・主キー・列名の定義です。
// クエリの射影とフィルタ列の検証の両方でこの定義を使います。
type Entity struct {
	Kind       Kind
	Name       string // "Business" など、エラーメッセージ用
	Table      string
	Plural     string // URL のパスセグメント
	PrimaryKey []string
	Columns    []string
	// Recency が空でなければ、その列の降順 (新しい順) で並べます。
	Recency string
}

// HasColumn は列名がこのエンティティに存在するかを返します。
func (e Entity) HasColumn(column string) bool {
	return slices.Contains(e.Columns, column)
}

var registry = []Entity{
	{
		Kind:       KindBusiness,
		Name:       "Business",
		Table:      "business",
		Plural:     "businesses",
		PrimaryKey: []string{"business_id"},
		Columns: []string{
			"business_id", "name", "address", "city", "state", "postal_code",
			"latitude", "longitude", "stars", "review_count", "is_open",
			"attributes", "categories", "hours",
		},
	},
	{
		Kind:       KindReview,
		Name:       "Review",
		Table:      "reviews",
		Plural:     "reviews",
		PrimaryKey: []string{"review_id"},
		Columns: []string{
			"review_id", "user_id", "business_id", "stars", "useful", "funny",
			"cool", "text", "date", "year", "month",
		},
		Recency: "date",
	},
	{
		Kind:       KindUser,
		Name:       "User",
		Table:      "yelp_users",
		Plural:     "users",
		PrimaryKey: []string{"user_id"},
		Columns: []string{
			"user_id", "name", "review_count", "yelping_since", "friends",
			"useful", "funny", "cool", "fans", "elite", "average_stars",
			"compliment_hot", "compliment_more", "compliment_profile",
			"compliment_cute", "compliment_list", "compliment_note",
			"compliment_plain", "compliment_cool", "compliment_funny",
			"compliment_writer", "compliment_photos",
		},
	},
	{
		Kind:       KindTip,
		Name:       "Tip",
		Table:      "tips",
		Plural:     "tips",
		PrimaryKey: []string{"user_id", "business_id"},
		Columns: []string{
			"user_id", "business_id", "text", "date", "compliment_count", "year",
		},
		Recency: "date",
	},
	{
		Kind:       KindCheckin,
		Name:       "Checkin",
		Table:      "checkins",
		Plural:     "checkins",
		PrimaryKey: []string{"business_id", "date"},
		Columns:    []string{"business_id", "date"},
	},
}

// Lookup は種類に対応する定義を返します。
func Lookup(kind Kind) (Entity, bool) {
	for _, e := range registry {
		if e.Kind == kind {
			return e, true
		}
	}
	return Entity{}, false
}

// MustLookup は未登録の種類で panic します。パッケージ初期化時の定数参照用。
func MustLookup(kind Kind) Entity {
	e, ok := Lookup(kind)
	if !ok {
		panic("model: unknown entity kind " + string(kind))
	}
	return e
}

// Entities は登録済みの全エンティティを返します。
func Entities() []Entity {
	return slices.Clone(registry)
}
