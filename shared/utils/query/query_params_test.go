package query

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func contextFor(target string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	return c
}

func TestParseListParams(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   ListParams
	}{
		{"defaults", "/organizations", ListParams{Skip: 0, Limit: 20}},
		{"explicit", "/organizations?skip=40&limit=10&search=+Team+", ListParams{Skip: 40, Limit: 10, Search: "Team"}},
		{"clamped", "/organizations?skip=-1&limit=1000", ListParams{Skip: 0, Limit: 100}},
		{"garbage", "/organizations?skip=x&limit=y", ListParams{Skip: 0, Limit: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseListParams(contextFor(tt.target), 20, 100)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseListParams_Seq(t *testing.T) {
	got := ParseListParams(contextFor("/organizations?seq=42"), 20, 100)
	require.NotNil(t, got.Seq)
	assert.Equal(t, uint64(42), *got.Seq)

	got = ParseListParams(contextFor("/organizations?seq=-1"), 20, 100)
	assert.Nil(t, got.Seq)
}

func TestBuildPaginationResponse(t *testing.T) {
	p := BuildPaginationResponse(20, 10, 35)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	p = BuildPaginationResponse(0, 20, 20)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrev)
}
