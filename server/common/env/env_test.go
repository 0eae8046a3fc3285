package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStringFallsBackOnBlank(t *testing.T) {
	t.Setenv("SYSCOURSE_TEST_STRING", "   ")
	assert.Equal(t, "fallback", String("SYSCOURSE_TEST_STRING", "fallback"))

	t.Setenv("SYSCOURSE_TEST_STRING", " value ")
	assert.Equal(t, "value", String("SYSCOURSE_TEST_STRING", "fallback"))
}

func TestIntAcceptsZero(t *testing.T) {
	t.Setenv("SYSCOURSE_TEST_INT", "0")
	assert.Equal(t, 0, Int("SYSCOURSE_TEST_INT", 7))

	t.Setenv("SYSCOURSE_TEST_INT", "-3")
	assert.Equal(t, 7, Int("SYSCOURSE_TEST_INT", 7))

	t.Setenv("SYSCOURSE_TEST_INT", "abc")
	assert.Equal(t, 7, Int("SYSCOURSE_TEST_INT", 7))
}

func TestMillis(t *testing.T) {
	t.Setenv("SYSCOURSE_TEST_MS", "1500")
	assert.Equal(t, 1500*time.Millisecond, Millis("SYSCOURSE_TEST_MS", time.Second))

	t.Setenv("SYSCOURSE_TEST_MS", "0")
	assert.Equal(t, time.Duration(0), Millis("SYSCOURSE_TEST_MS", time.Second))

	t.Setenv("SYSCOURSE_TEST_MS", "")
	assert.Equal(t, time.Second, Millis("SYSCOURSE_TEST_MS", time.Second))
}

func TestCSVDeduplicates(t *testing.T) {
	t.Setenv("SYSCOURSE_TEST_CSV", "a, b,,a ,c")
	assert.Equal(t, []string{"a", "b", "c"}, CSV("SYSCOURSE_TEST_CSV", nil))

	t.Setenv("SYSCOURSE_TEST_CSV", " , ")
	assert.Equal(t, []string{"x"}, CSV("SYSCOURSE_TEST_CSV", []string{"x"}))
}
