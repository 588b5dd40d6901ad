package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSafeSelect(t *testing.T) {
	safe := []string{
		"SELECT * FROM transactions",
		"select status, count(*) from transactions group by status;",
		"SELECT toStartOfMonth(created_at) AS m, sum(amount) FROM transactions GROUP BY m",
		"  SELECT 1",
	}
	for _, q := range safe {
		assert.True(t, IsSafeSelect(q), q)
	}

	unsafe := []string{
		"",
		"DELETE FROM transactions",
		"UPDATE partners SET status = 'x'",
		"DROP TABLE transactions",
		"INSERT INTO t VALUES (1)",
		"SELECT 1; DROP TABLE transactions",
		"TRUNCATE transactions",
		"ALTER TABLE t DELETE WHERE 1",
	}
	for _, q := range unsafe {
		assert.False(t, IsSafeSelect(q), q)
	}
}
