package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidEmail(t *testing.T) {
	valid := []string{"alice@example.com", "A.B+tag@sub.example.io"}
	invalid := []string{"", "alice", "alice@", "@example.com", "Alice <alice@example.com>", "alice@localhost", "a b@x.io"}

	for _, v := range valid {
		assert.True(t, ValidEmail(v), v)
	}
	for _, v := range invalid {
		assert.False(t, ValidEmail(v), v)
	}
}

func TestValidCardNumber(t *testing.T) {
	assert.True(t, ValidCardNumber("4111111111111111"))
	assert.False(t, ValidCardNumber("411111111111111"))
	assert.False(t, ValidCardNumber("41111111111111112"))
	assert.False(t, ValidCardNumber("4111-1111-1111-11"))
	assert.False(t, ValidCardNumber(""))
}

func TestProfile(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	var ok Errors
	Profile("Alice", "Smith", now, now, &ok)
	assert.NoError(t, ok.Err())

	var bad Errors
	Profile(" ", "", now.Add(24*time.Hour), now, &bad)
	require.Len(t, bad, 3)
	assert.Equal(t, "name", bad[0].Field)
	assert.Equal(t, "surname", bad[1].Field)
	assert.Equal(t, "birthDate", bad[2].Field)
	assert.Contains(t, bad.Error(), "birthDate: must be a date in the past or present")

	var missing Errors
	Profile("A", "B", time.Time{}, now, &missing)
	require.Len(t, missing, 1)
	assert.Equal(t, "is required", missing[0].Message)
}

func TestCard(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	var ok Errors
	Card("cards[0].", "4111111111111111", "ALICE", exp, &ok)
	assert.Nil(t, ok.Err())

	var bad Errors
	Card("cards[1].", "123", "", time.Time{}, &bad)
	require.Len(t, bad, 3)
	assert.Equal(t, "cards[1].number", bad[0].Field)
	assert.Equal(t, "cards[1].holder", bad[1].Field)
	assert.Equal(t, "cards[1].expirationDate", bad[2].Field)
}
