package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPriceKeyword(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"keyword uah", "Продаю куртку, ціна: 5000 грн", 5000},
		{"keyword spaced colon", "ціна : 3500 грн", 3500},
		{"russian keyword", "цена: 4200", 4200},
		{"english keyword", "price: 990 uah", 990},
		{"dollar sign", "$250", 250},
		{"thousands suffix k", "ціна: 5k", 5000},
		{"thousands suffix cyrillic", "ціна: 2.5к", 2500},
		{"grouped integer", "ціна: 1.500 грн", 1500},
		{"comma decimal", "ціна: 1500,50 грн", 1500.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractPrice(tt.text)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractPriceFallback(t *testing.T) {
	// Без ключевого слова берётся максимальное число с валютой от 100
	got, ok := ExtractPrice("Nike Air Max, 44 розмір, 3500 грн, стан 9/10")
	assert.True(t, ok)
	assert.Equal(t, float64(3500), got)

	got, ok = ExtractPrice("5k за все")
	assert.True(t, ok)
	assert.Equal(t, float64(5000), got)

	// Несколько подходящих чисел — берём большее
	got, ok = ExtractPrice("віддам за 2000 грн або 2500 грн з доставкою")
	assert.True(t, ok)
	assert.Equal(t, float64(2500), got)
}

func TestExtractPriceNotFound(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"no numbers", "продам куртку, пишіть в лс"},
		{"size only", "42"},
		{"small numbers", "стан 9/10, розмір 38"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ExtractPrice(tt.text)
			assert.False(t, ok)
		})
	}
}

func TestHasShopTrigger(t *testing.T) {
	assert.True(t, HasShopTrigger("ціна: 5000"))
	assert.True(t, HasShopTrigger("price - 300"))
	assert.True(t, HasShopTrigger("всього 5000 грн"))
	assert.True(t, HasShopTrigger("200 usd"))
	assert.False(t, HasShopTrigger("новий дроп у магазині"))
	assert.False(t, HasShopTrigger("розмір 42"))
}
