package handlers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go_resale_bot/database"
	"go_resale_bot/moderation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedPost struct {
	userID     int
	telegramID string
	category   string
	content    string
}

type fakeStore struct {
	counts   map[string]int
	oldest   map[string]time.Time
	posts    []recordedPost
	countErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		counts: make(map[string]int),
		oldest: make(map[string]time.Time),
	}
}

func (s *fakeStore) CreatePost(ctx context.Context, userID int, telegramID, category, content string) (*database.Post, error) {
	s.posts = append(s.posts, recordedPost{userID, telegramID, category, content})
	return &database.Post{UserID: userID, TelegramID: telegramID, Category: category}, nil
}

func (s *fakeStore) GetRecentPostsCount(ctx context.Context, telegramID, category string, hours int) (int, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.counts[category], nil
}

func (s *fakeStore) GetOldestRecentPost(ctx context.Context, telegramID, category string, hours int) (*time.Time, error) {
	if ts, ok := s.oldest[category]; ok {
		return &ts, nil
	}
	return nil, nil
}

func testUser(sub database.Subscription) *database.User {
	return &database.User{
		ID:           1,
		TelegramID:   "777",
		XP:           10,
		Rank:         "Новачок",
		Subscription: sub,
	}
}

func newTestEngine(store PostStore) *Engine {
	return NewEngine(store, 3000, 1500)
}

func TestEvaluateSellAccepted(t *testing.T) {
	store := newFakeStore()
	e := newTestEngine(store)

	dec, err := e.Evaluate(context.Background(), testUser(database.SubBasic), PostInput{
		Text:     "#продам куртку Carhartt, ціна: 5000 грн",
		HasMedia: true,
	})
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
	assert.Equal(t, moderation.CategorySell, dec.Category)

	require.Len(t, store.posts, 1)
	assert.Equal(t, "sell", store.posts[0].category)
	assert.Equal(t, "777", store.posts[0].telegramID)
}

func TestEvaluateBuyNoPriceRequired(t *testing.T) {
	store := newFakeStore()
	e := newTestEngine(store)

	dec, err := e.Evaluate(context.Background(), testUser(database.SubBasic), PostInput{
		Text: "#куплю джордани 43, бюджет обмежений",
	})
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
	require.Len(t, store.posts, 1)
	assert.Equal(t, "buy", store.posts[0].category)
}

func TestEvaluateMissingHashtag(t *testing.T) {
	store := newFakeStore()
	e := newTestEngine(store)

	dec, err := e.Evaluate(context.Background(), testUser(database.SubBasic), PostInput{
		Text: "продам куртку, ціна: 5000 грн",
	})
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Contains(t, dec.Warning, "хештегів")
	assert.Empty(t, store.posts)
}

func TestEvaluateSticker(t *testing.T) {
	store := newFakeStore()
	e := newTestEngine(store)

	dec, err := e.Evaluate(context.Background(), testUser(database.SubBasic), PostInput{
		Text:       "#продам, ціна: 5000 грн",
		HasSticker: true,
	})
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Contains(t, dec.Warning, "Стікери")
	assert.Empty(t, store.posts)
}

func TestEvaluateVoice(t *testing.T) {
	store := newFakeStore()
	e := newTestEngine(store)

	dec, err := e.Evaluate(context.Background(), testUser(database.SubBasic), PostInput{HasVoice: true})
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Contains(t, dec.Warning, "Голосові")
}

func TestEvaluateMediaWithoutDescription(t *testing.T) {
	store := newFakeStore()
	e := newTestEngine(store)

	dec, err := e.Evaluate(context.Background(), testUser(database.SubBasic), PostInput{HasMedia: true})
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Contains(t, dec.Warning, "опису")
}

func TestEvaluateEmptyMessageIsNoop(t *testing.T) {
	store := newFakeStore()
	e := newTestEngine(store)

	dec, err := e.Evaluate(context.Background(), testUser(database.SubBasic), PostInput{})
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
	assert.Empty(t, dec.Category)
	assert.Empty(t, store.posts)
}

func TestEvaluateAllowedCommandSkipped(t *testing.T) {
	store := newFakeStore()
	e := newTestEngine(store)

	dec, err := e.Evaluate(context.Background(), testUser(database.SubBasic), PostInput{Text: "/report спам"})
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
	assert.Empty(t, store.posts)
}

func TestEvaluateUnknownCommandRejected(t *testing.T) {
	store := newFakeStore()
	e := newTestEngine(store)

	dec, err := e.Evaluate(context.Background(), testUser(database.SubBasic), PostInput{Text: "/start"})
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Contains(t, dec.Warning, "хештегів")
	assert.Empty(t, store.posts)
}

func TestEvaluateStickerBeforeUnknownCommand(t *testing.T) {
	store := newFakeStore()
	e := newTestEngine(store)

	// Медиагруппа со стикером и командной подписью: причина — стикер
	dec, err := e.Evaluate(context.Background(), testUser(database.SubBasic), PostInput{
		Text:       "/start",
		HasSticker: true,
	})
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Contains(t, dec.Warning, "Стікери")
}

func TestEvaluateCommandWithForeignMentionRejected(t *testing.T) {
	store := newFakeStore()
	e := newTestEngine(store)

	dec, err := e.Evaluate(context.Background(), testUser(database.SubBasic), PostInput{Text: "/set@someotherbot basic+"})
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Empty(t, store.posts)
}

func TestEvaluateRateLimitWithCountdown(t *testing.T) {
	store := newFakeStore()
	e := newTestEngine(store)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }

	// BASIC: 1/24ч, самый старый пост 10 часов назад — ждать 14 часов
	store.counts["sell"] = 1
	store.oldest["sell"] = now.Add(-10 * time.Hour)

	dec, err := e.Evaluate(context.Background(), testUser(database.SubBasic), PostInput{
		Text: "#продам кросівки, ціна: 5000 грн",
	})
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Contains(t, dec.Warning, "1/1")
	assert.Contains(t, dec.Warning, "#продам")
	assert.Contains(t, dec.Warning, "14 год")
	assert.Empty(t, store.posts)
}

func TestEvaluateBasicPlusUnderLimit(t *testing.T) {
	store := newFakeStore()
	e := newTestEngine(store)

	store.counts["sell"] = 2
	dec, err := e.Evaluate(context.Background(), testUser(database.SubBasicPlus), PostInput{
		Text: "#продам худі, ціна: 3000 грн",
	})
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
	require.Len(t, store.posts, 1)
}

func TestEvaluatePriceRules(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		allowed  bool
		fragment string
	}{
		{"no price", "#продам куртку", false, "не містить ціни"},
		{"below minimum", "#продам куртку, ціна: 2000 грн", false, "нижча за мінімальну"},
		{"at minimum", "#продам куртку, ціна: 3000 грн", true, ""},
		{"tshirt lower minimum", "#продам #футболка, ціна: 1500 грн", true, ""},
		{"tshirt below minimum", "#продам #футболка, ціна: 1000 грн", false, "1500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			e := newTestEngine(store)

			dec, err := e.Evaluate(context.Background(), testUser(database.SubBasic), PostInput{Text: tt.text})
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, dec.Allowed)
			if tt.fragment != "" {
				assert.Contains(t, dec.Warning, tt.fragment)
			}
			if tt.allowed {
				assert.Len(t, store.posts, 1)
			} else {
				assert.Empty(t, store.posts)
			}
		})
	}
}

func TestEvaluateShop(t *testing.T) {
	store := newFakeStore()
	e := newTestEngine(store)
	user := testUser(database.SubShop)

	// Без ценового триггера — отказ даже с хештегом
	dec, err := e.Evaluate(context.Background(), user, PostInput{Text: "новий дроп у магазині"})
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Contains(t, dec.Warning, "SHOP")
	assert.Empty(t, store.posts)

	// С ценой — запись в отдельную категорию shop_ad
	dec, err = e.Evaluate(context.Background(), user, PostInput{Text: "новий дроп, ціна: 2500 грн"})
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
	assert.Equal(t, moderation.CategoryShopAd, dec.Category)
	require.Len(t, store.posts, 1)
	assert.Equal(t, "shop_ad", store.posts[0].category)
}

func TestEvaluateShopRateLimit(t *testing.T) {
	store := newFakeStore()
	e := newTestEngine(store)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }

	store.counts["shop_ad"] = 10
	store.oldest["shop_ad"] = now.Add(-11*time.Hour - 30*time.Minute)

	dec, err := e.Evaluate(context.Background(), testUser(database.SubShop), PostInput{
		Text: "дроп, ціна: 2500 грн",
	})
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Contains(t, dec.Warning, "10/10")
	assert.Contains(t, dec.Warning, "30 хв")
	assert.Empty(t, store.posts)
}

func TestEvaluateStoreError(t *testing.T) {
	store := newFakeStore()
	store.countErr = errors.New("connection refused")
	e := newTestEngine(store)

	_, err := e.Evaluate(context.Background(), testUser(database.SubBasic), PostInput{
		Text: "#продам, ціна: 5000 грн",
	})
	require.Error(t, err)
	assert.Empty(t, store.posts)
}

func TestEvaluateTruncatesContent(t *testing.T) {
	store := newFakeStore()
	e := newTestEngine(store)

	long := "#продам " + strings.Repeat("дуже довгий опис ", 20) + "ціна: 5000 грн"
	dec, err := e.Evaluate(context.Background(), testUser(database.SubBasic), PostInput{Text: long})
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
	require.Len(t, store.posts, 1)
	assert.LessOrEqual(t, len([]rune(store.posts[0].content)), 50)
}
