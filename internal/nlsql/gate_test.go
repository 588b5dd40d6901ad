package nlsql

import (
	"testing"

	"analytics/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var analystTables = []string{"transactions", "partners", "sales.orders"}

func TestExtractTables(t *testing.T) {
	sql := `SELECT p.partner_name, SUM(t.amount)
		FROM transactions t
		join partners p ON p.partner_id = t.partner_id
		LEFT JOIN sales.orders o ON o.id = t.order_id
		GROUP BY p.partner_name`

	assert.Equal(t, []string{"transactions", "partners", "sales.orders"}, ExtractTables(sql))
	assert.Empty(t, ExtractTables("SELECT 1"))
}

func requireDenied(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var denied *domain.PermissionDeniedError
	require.ErrorAs(t, err, &denied)
}

func TestCheckAccess_AllowedTables(t *testing.T) {
	queries := []string{
		"SELECT status, count() FROM transactions GROUP BY status",
		"select partner_name from partners where status = 'active'",
		"SELECT toStartOfMonth(created_at) AS month, sum(amount) FROM transactions GROUP BY month ORDER BY month",
		"SELECT o.id FROM sales.orders AS o INNER JOIN transactions t ON t.order_id = o.id",
		"SELECT 1",
		"SELECT status, count() FROM transactions WHERE status IN ('paid', 'void') GROUP BY status, partner_id ORDER BY status, 2",
		"SELECT p.partner_name FROM transactions t JOIN partners p ON p.partner_id = coalesce(t.partner_id, 0) LIMIT 10",
	}
	for _, q := range queries {
		assert.NoError(t, CheckAccess(q, "analyst", analystTables), q)
	}
}

func TestCheckAccess_RejectsOutsideAllowList(t *testing.T) {
	queries := []string{
		"SELECT * FROM users",
		"SELECT * FROM transactions JOIN pos_devices d ON d.device_id = transactions.device_id",
		"SELECT * FROM orders",
		"SELECT * FROM public.transactions",
		"SELECT * FROM Transactions",
	}
	for _, q := range queries {
		requireDenied(t, CheckAccess(q, "analyst", analystTables))
	}
}

func TestCheckAccess_FailsClosedOnUnsupportedShapes(t *testing.T) {
	queries := map[string]string{
		"cte":              "WITH x AS (SELECT * FROM users) SELECT * FROM transactions",
		"subquery":         "SELECT * FROM transactions WHERE partner_id IN (SELECT id FROM users)",
		"derived table":    "SELECT * FROM (SELECT * FROM users) u",
		"union":            "SELECT amount FROM transactions UNION ALL SELECT salary FROM payroll",
		"comma join":       "SELECT * FROM transactions t, users u",
		"comma after on":   "SELECT u.password FROM transactions t JOIN partners p ON p.id = t.partner_id, users u",
		"in table":         "SELECT count() FROM transactions WHERE partner_id IN users",
		"global not in":    "SELECT count() FROM transactions WHERE partner_id GLOBAL NOT IN db.users",
		"array join":       "SELECT * FROM transactions ARRAY JOIN users",
		"quoted name":      `SELECT * FROM "users"`,
		"backtick name":    "SELECT * FROM `users`",
		"block comment":    "SELECT * FROM/**/users",
		"line comment":     "SELECT * FROM transactions -- JOIN users",
		"hidden in string": "SELECT * FROM transactions WHERE note = '--' UNION SELECT * FROM users",
		"table function":   "SELECT * FROM url('http://x', CSV)",
	}
	for name, q := range queries {
		t.Run(name, func(t *testing.T) {
			requireDenied(t, CheckAccess(q, "analyst", []string{"transactions", "url"}))
		})
	}
}

func TestCheckAccess_AdminBypass(t *testing.T) {
	queries := []string{
		"SELECT * FROM users",
		"WITH x AS (SELECT 1) SELECT * FROM x",
		"SELECT * FROM a, b",
		"anything at all",
	}
	for _, q := range queries {
		assert.NoError(t, CheckAccess(q, "admin", nil))
	}
}

func TestCheckAccess_EmptyAllowList(t *testing.T) {
	requireDenied(t, CheckAccess("SELECT * FROM transactions", "guest", nil))
}
