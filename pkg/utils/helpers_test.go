package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatThousands(t *testing.T) {
	cases := map[float64]string{
		0:          "0",
		7:          "7",
		999:        "999",
		1000:       "1,000",
		1234.4:     "1,234",
		1234.6:     "1,235",
		750:        "750",
		1234567:    "1,234,567",
		-1234567.2: "-1,234,567",
		-0.2:       "0",
		100000:     "100,000",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatThousands(in), "input %v", in)
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "1500", FormatValue(1500))
	assert.Equal(t, "750.5", FormatValue(750.5))
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 2*time.Second, ParseDuration("2s", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("soon", time.Minute))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList([]string{" a", "", "b "}))
	assert.Nil(t, SplitList(nil))
}
