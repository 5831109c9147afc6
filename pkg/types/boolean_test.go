package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrivalent_TruthTables(t *testing.T) {
	tests := []struct {
		a, b    Trivalent
		and, or Trivalent
	}{
		{True, True, True, True},
		{True, False, False, True},
		{False, False, False, False},
		{Unknown, False, False, Unknown},
		{Unknown, True, Unknown, True},
		{Unknown, Unknown, Unknown, Unknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.and, tt.a.And(tt.b), "%s AND %s", tt.a, tt.b)
		assert.Equal(t, tt.and, tt.b.And(tt.a), "%s AND %s", tt.b, tt.a)
		assert.Equal(t, tt.or, tt.a.Or(tt.b), "%s OR %s", tt.a, tt.b)
		assert.Equal(t, tt.or, tt.b.Or(tt.a), "%s OR %s", tt.b, tt.a)
	}
}

func TestTrivalent_Not(t *testing.T) {
	assert.Equal(t, False, True.Not())
	assert.Equal(t, True, False.Not())
	assert.Equal(t, Unknown, Unknown.Not())
}
