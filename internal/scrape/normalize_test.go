package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "korean and latin pass through",
			input:    "엔진오일 5W30 합성유 1L",
			expected: "엔진오일 5W30 합성유 1L",
		},
		{
			name:     "emoji and symbols stripped",
			input:    "🔥특가🔥 와이퍼 세트 ★무료배송★",
			expected: "특가 와이퍼 세트 무료배송",
		},
		{
			name:     "allowed punctuation kept",
			input:    "브레이크패드 [전륜] #1 (정품) 50%할인",
			expected: "브레이크패드 [전륜] #1 (정품) 50%할인",
		},
		{
			name:     "empty stays empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeTitle(tt.input)
			assert.Equal(t, tt.expected, got)

			// Sanitization is idempotent
			assert.Equal(t, got, SanitizeTitle(got))
		})
	}
}

func TestReconcileDedupesKeepingFirst(t *testing.T) {
	products := []Product{
		{ID: 1, Title: "첫번째 상품", Price: 1000, PopularityIndex: 0},
		{ID: 2, Title: "두번째 상품", Price: 2000, PopularityIndex: 1},
		{ID: 1, Title: "중복 상품", Price: 9999, PopularityIndex: 50},
		{ID: 3, Title: "세번째 상품", Price: -500, PopularityIndex: 2},
	}

	got := Reconcile(products)

	assert.Len(t, got, 3)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, "첫번째 상품", got[0].Title)
	// The earlier occurrence wins, a cross-listed product keeps its
	// first (best) popularity slot
	assert.Equal(t, 0, got[0].PopularityIndex)
	assert.Equal(t, int64(1000), got[0].Price)

	// Negative prices clamp to zero
	assert.Equal(t, int64(0), got[2].Price)
}

func TestReconcileSanitizesTitles(t *testing.T) {
	got := Reconcile([]Product{{ID: 7, Title: "🚗세차용품♥ 거품건"}})
	assert.Equal(t, "세차용품 거품건", got[0].Title)
}

func TestMergePagesPreservesDeclaredOrder(t *testing.T) {
	pages := []*Page{
		{Num: 1, Products: []Product{{ID: 1}, {ID: 2}}},
		{Num: 2, Products: []Product{{ID: 3}}},
		{Num: 3, Products: nil},
		{Num: 4, Products: []Product{{ID: 4}}},
	}

	got := MergePages(pages)

	ids := make([]int64, len(got))
	for i, p := range got {
		ids[i] = p.ID
	}
	assert.Equal(t, []int64{1, 2, 3, 4}, ids)
}
