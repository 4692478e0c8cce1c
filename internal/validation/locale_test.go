package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+380671234567", "+380671234567"},
		{"+38 (067) 123-45-67", "+380671234567"},
		{"067 123 45 67", "+380671234567"},
		{"380671234567", "+380671234567"},
		{" 0671234567 ", "+380671234567"},
		{"12345", "12345"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.in))
		})
	}
}

func TestIsUkrainianPhone(t *testing.T) {
	assert.True(t, IsUkrainianPhone("+380671234567"))
	assert.False(t, IsUkrainianPhone("+38067123456"))
	assert.False(t, IsUkrainianPhone("+48671234567"))
	assert.False(t, IsUkrainianPhone("0671234567"))
}

func TestIsUkrainianName(t *testing.T) {
	valid := []string{"Іван", "Олена", "Анна-Марія", "Ольга Петрівна", "Мар'яна", "Зʼявленко", "Ґудзь", "Їжак"}
	for _, s := range valid {
		assert.True(t, IsUkrainianName(s), s)
	}
	invalid := []string{"", "І", "іван", "Ivan", "Эдуард", "Артём", "Іван3", "Іван-", "Іван  Петро", "-Іван", "Олена'"}
	for _, s := range invalid {
		assert.False(t, IsUkrainianName(s), s)
	}
}

func TestIsUkrainianText(t *testing.T) {
	valid := []string{
		"Крамниця «Смаколики»",
		"Кросівки Nike Air, розмір 42",
		"Опис товару:\nнатуральна шкіра, 100%",
		"Їжа №1",
		"Мʼята перцева",
	}
	for _, s := range valid {
		assert.True(t, IsUkrainianText(s), s)
	}
	invalid := []string{
		"",
		"Nike Air Max",
		"12345",
		"Магазин ёлок",
		"Съешь ещё",
		"Крамниця ✓ ελληνικά",
		"Крамниця\x00",
	}
	for _, s := range invalid {
		assert.False(t, IsUkrainianText(s), s)
	}
}

func TestIsStrongPassword(t *testing.T) {
	assert.True(t, IsStrongPassword("secret123"))
	assert.True(t, IsStrongPassword("Пароль2024"))
	assert.False(t, IsStrongPassword("short1"))
	assert.False(t, IsStrongPassword("onlyletters"))
	assert.False(t, IsStrongPassword("12345678"))
	assert.False(t, IsStrongPassword("with space 1"))
}
