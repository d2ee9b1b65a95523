package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2024-06-01T12:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("01/06/2024")
	assert.Error(t, err)
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 3, ParseInt("3", 1))
	assert.Equal(t, 1, ParseInt("", 1))
	assert.Equal(t, 1, ParseInt("abc", 1))
	assert.Equal(t, 1, ParseInt("-4", 1))
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"wifi", "pool"}, SplitCSV(" wifi, ,pool "))
	assert.Nil(t, SplitCSV(""))
}

func TestGenerateOTP(t *testing.T) {
	otp := GenerateOTP(6)
	assert.Len(t, otp, 6)
	for _, c := range otp {
		assert.True(t, c >= '0' && c <= '9')
	}
	assert.Len(t, GenerateOTP(0), 6)
}

func TestNormalizePage(t *testing.T) {
	page, perPage := NormalizePage(0, 0, 20)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, perPage)

	_, perPage = NormalizePage(2, 500, 10)
	assert.Equal(t, MaxPerPage, perPage)

	assert.Equal(t, 3, CalculateTotalPages(21, 10))
	assert.Equal(t, 0, CalculateTotalPages(0, 10))
}
