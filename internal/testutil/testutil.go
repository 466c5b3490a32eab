package testutil

import (
	"context"
	"database/sql"
	"math/rand"
	"testing"
	"time"

	"comunio-manager/internal/db"
)

// SetupDB opens an in-memory ledger with the schema applied, it is closed
// when the test ends.
func SetupDB(t testing.TB) *sql.DB {
	t.Helper()

	database, err := db.OpenDB(context.Background(), db.Config{File: ":memory:"})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// Clock is a chrono.TimeAPI that only moves when told to.
type Clock struct {
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now.UTC()}
}

func (c *Clock) Now() time.Time {
	return c.now
}

// AdvanceDays moves the clock n days forward (or backward if n is negative).
func (c *Clock) AdvanceDays(n int) {
	c.now = c.now.AddDate(0, 0, n)
}

// RandomString generates a random lowercase string given the pseudo random source.
func RandomString(rndm *rand.Rand, length int) string {
	str := make([]rune, length)
	for i := range length {
		str[i] = 'a' + rune(rndm.Intn(26))
	}
	return string(str)
}
