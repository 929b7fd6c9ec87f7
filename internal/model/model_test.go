package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name        string
		page, limit int
		wantPage    int
		wantLimit   int
		wantOffset  int
	}{
		{"defaults", 0, 0, 1, DefaultPageSize, 0},
		{"negative page", -3, 10, 1, 10, 0},
		{"clamped limit", 2, 500, 2, MaxPageSize, MaxPageSize},
		{"third page", 3, 20, 3, 20, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.limit)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantLimit, p.Limit)
			assert.Equal(t, tt.wantOffset, p.Offset())
		})
	}
}

func TestNewPaginatedResponse(t *testing.T) {
	res := NewPaginatedResponse[int](nil, 1, 25, 51)
	assert.NotNil(t, res.Data)
	assert.Equal(t, 3, res.TotalPages)

	assert.Equal(t, 0, NewPaginatedResponse([]int{}, 1, 0, 10).TotalPages)
}

func TestSessionUserExpired(t *testing.T) {
	now := time.Now()
	s := &SessionUser{ExpiresAt: now}

	assert.True(t, s.Expired(now))
	assert.False(t, s.Expired(now.Add(-time.Second)))
}

func TestEnums(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("owner").Valid())

	assert.True(t, ConsultStatusNoShow.Valid())
	assert.False(t, ConsultStatus("pending").Valid())
	assert.False(t, ConsultStatusCancelled.Blocking())
	assert.True(t, ConsultStatusScheduled.Blocking())

	assert.True(t, OptionCategoryClientType.Valid())
	assert.False(t, OptionCategory("color").Valid())
}
