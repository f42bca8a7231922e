package domain

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		expected string
	}{
		{
			name:     "igualdad simple",
			criteria: Eq("id", "5"),
			expected: "id = 5",
		},
		{
			name:     "pertenencia y AND",
			criteria: And(InStrings("login", []string{"a", "b"}), Eq("id", "5")),
			expected: "login IN (a, b) AND id = 5",
		},
		{
			name:     "OR anidado dentro de AND",
			criteria: And(Eq("id", "1"), Or(Contains("login", "a"), Contains("login", "b"))),
			expected: "id = 1 AND (login ILIKE %a% OR login ILIKE %b%)",
		},
		{
			name:     "negación e intervalo",
			criteria: And(Not(IsNull("banned_at")), Between("id", 1, 5)),
			expected: "NOT (banned_at IS NULL) AND id BETWEEN 1 AND 5",
		},
		{
			name:     "OR como único hijo no lleva paréntesis",
			criteria: And(Or(Eq("id", 1), Eq("id", 2))),
			expected: "id = 1 OR id = 2",
		},
		{
			name:     "compuesto vacío",
			criteria: And(Or(), And()),
			expected: "",
		},
		{
			name:     "fechas en UTC",
			criteria: Gte("begin_at", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)),
			expected: "begin_at >= 2024-01-02T03:04:05Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.criteria))
		})
	}
}

func TestEncode(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	assert.Equal(t,
		`login IN (s:"a", s:"b") AND age BETWEEN i:18 AND f:40.5 AND created_at >= t:2024-01-02T03:04:05Z AND banned_at IS NULL`,
		Encode(And(InStrings("login", []string{"a", "b"}), Between("age", int64(18), 40.5), Gte("created_at", at), IsNull("banned_at"))))
	assert.Equal(t, "admin = b:true", Encode(Eq("admin", true)))
	assert.Equal(t, "x = null", Encode(Eq("x", nil)))
}

func TestEncode_NoCollisions(t *testing.T) {
	tests := []struct {
		name string
		a, b Criteria
	}{
		{"AND dentro del valor", Eq("login", "x AND id = 5"), And(Eq("login", "x"), Eq("id", "5"))},
		{"coma dentro del valor", In("login", "a, b"), In("login", "a", "b")},
		{"OR y paréntesis", Eq("login", "x) OR (id = 1"), Or(Eq("login", "x"), Eq("id", "1"))},
		{"texto frente a número", Eq("id", "5"), Eq("id", int64(5))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, Encode(tt.a), Encode(tt.b))
		})
	}
}

func TestCompositeCriteria_IsEmpty(t *testing.T) {
	assert.True(t, And().IsEmpty())
	assert.True(t, And(Or(), And()).IsEmpty())
	assert.False(t, And(Or(Eq("id", 1))).IsEmpty())
	assert.False(t, Not(IsNull("banned_at")).IsEmpty())
}

func TestCompositeCriteria_ToConditions(t *testing.T) {
	// Arrange
	crit := And(Eq("id", 1), Or(Eq("login", "a"), Eq("login", "b")))

	// Act
	conds := crit.ToConditions()

	// Assert
	assert.Len(t, conds, 3)
	assert.Equal(t, "login", conds[2].Field)
}

func TestLikeToRegex(t *testing.T) {
	re := regexp.MustCompile("(?i)" + LikeToRegex("%ana_%"))

	assert.True(t, re.MatchString("Mariana1"))
	assert.False(t, re.MatchString("ana"))
	assert.Equal(t, `^a\+b$`, LikeToRegex("a+b"))
}
