package pagination

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"testing"

	"github.com/mroshb/kudos/internal/models"
	"github.com/mroshb/kudos/internal/testutil"
	"github.com/mroshb/kudos/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		limit     int
		wantPage  int
		wantLimit int
	}{
		{name: "Defaults", page: 0, limit: 0, wantPage: 1, wantLimit: 10},
		{name: "In range", page: 3, limit: 25, wantPage: 3, wantLimit: 25},
		{name: "Limit above max", page: 1, limit: 1000, wantPage: 1, wantLimit: 100},
		{name: "Negative values", page: -4, limit: -7, wantPage: 1, wantLimit: 1},
		{name: "Limit at max", page: 2, limit: 100, wantPage: 2, wantLimit: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit := Normalize(tt.page, tt.limit)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestNormalize_Bounds(t *testing.T) {
	for page := -3; page <= 3; page++ {
		for _, limit := range []int{-100, -1, 0, 1, 50, 100, 101, 1000} {
			p, l := Normalize(page, limit)
			assert.GreaterOrEqual(t, p, 1)
			assert.GreaterOrEqual(t, l, 1)
			assert.LessOrEqual(t, l, MaxLimit)
		}
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		want  int
	}{
		{total: 0, limit: 10, want: 1},
		{total: 1, limit: 10, want: 1},
		{total: 10, limit: 10, want: 1},
		{total: 11, limit: 10, want: 2},
		{total: 250, limit: 100, want: 3},
		{total: 7, limit: 1, want: 7},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.total, tt.limit), func(t *testing.T) {
			assert.Equal(t, tt.want, TotalPages(tt.total, tt.limit))
		})
	}
}

func TestDescending(t *testing.T) {
	assert.False(t, Descending("asc"))
	assert.False(t, Descending("ASC"))
	assert.True(t, Descending("desc"))
	assert.True(t, Descending(""))
	assert.True(t, Descending("sideways"))
}

func TestResolveProjection(t *testing.T) {
	tests := []struct {
		name     string
		pick     string
		populate string
		want     Projection
	}{
		{name: "Nothing", want: Projection{Kind: ProjectNone}},
		{name: "Pick", pick: "id  points", want: Projection{Kind: ProjectFields, Names: []string{"id", "points"}}},
		{name: "Populate commas", populate: "user,reward", want: Projection{Kind: ProjectRelations, Names: []string{"user", "reward"}}},
		{name: "Populate mixed", populate: "sender, receiver reactions", want: Projection{Kind: ProjectRelations, Names: []string{"sender", "receiver", "reactions"}}},
		{name: "Pick wins", pick: "id", populate: "reactions", want: Projection{Kind: ProjectFields, Names: []string{"id"}}},
		{name: "Blank pick ignored", pick: "   ", populate: "reactions", want: Projection{Kind: ProjectRelations, Names: []string{"reactions"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveProjection(tt.pick, tt.populate))
		})
	}
}

func TestParamsFromQuery(t *testing.T) {
	q := url.Values{
		"page":      {"2"},
		"limit":     {"abc"},
		"sort_by":   {" points "},
		"direction": {"asc"},
		"pick":      {"id points"},
	}

	p := ParamsFromQuery(q)
	assert.Equal(t, Params{Page: 2, SortBy: "points", Direction: "asc", Pick: "id points"}, p)

	p = p.WithDefaults("created_at", "desc", "reactions")
	assert.Equal(t, "points", p.SortBy)
	assert.Equal(t, "asc", p.Direction)
	assert.Equal(t, "reactions", p.Populate)
}

func seedKudos(t *testing.T, n int) *gorm.DB {
	t.Helper()

	db := testutil.NewDB(t)
	sender := testutil.CreateUser(t, db, "sender", 1000)
	receiver := testutil.CreateUser(t, db, "receiver", 0)

	for i := 1; i <= n; i++ {
		kudo := &models.Kudo{SenderID: sender.ID, ReceiverID: receiver.ID, Points: i}
		require.NoError(t, db.Create(kudo).Error)
		require.NoError(t, db.Create(&models.Reaction{KudoID: kudo.ID, UserID: receiver.ID, Emoji: "🎉"}).Error)
	}
	return db
}

func TestPaginate(t *testing.T) {
	db := seedKudos(t, 25)
	ctx := context.Background()

	page, err := Paginate[models.Kudo](ctx, db, Params{Page: 3, Limit: 10, SortBy: "points", Direction: "asc"})
	require.NoError(t, err)

	assert.Equal(t, PageInfo{Page: 3, Limit: 10, TotalPages: 3, TotalResults: 25}, page.Info)
	require.Len(t, page.Items, 5)
	assert.Equal(t, 21, page.Items[0].Points)
	assert.Equal(t, 25, page.Items[4].Points)
}

func TestPaginate_DefaultDirectionIsDescending(t *testing.T) {
	db := seedKudos(t, 5)

	page, err := Paginate[models.Kudo](context.Background(), db, Params{SortBy: "points"})
	require.NoError(t, err)
	require.Len(t, page.Items, 5)
	assert.Equal(t, 5, page.Items[0].Points)
}

func TestPaginate_FilterScope(t *testing.T) {
	db := seedKudos(t, 12)

	bigOnly := func(tx *gorm.DB) *gorm.DB { return tx.Where("points > ?", 8) }
	page, err := Paginate[models.Kudo](context.Background(), db, Params{Limit: 2}, bigOnly)
	require.NoError(t, err)

	assert.EqualValues(t, 4, page.Info.TotalResults)
	assert.Equal(t, 2, page.Info.TotalPages)
	assert.Len(t, page.Items, 2)
}

func TestPaginate_EmptyHasOnePage(t *testing.T) {
	db := testutil.NewDB(t)

	page, err := Paginate[models.Reward](context.Background(), db, Params{})
	require.NoError(t, err)
	assert.Equal(t, PageInfo{Page: 1, Limit: 10, TotalPages: 1, TotalResults: 0}, page.Info)

	body, err := json.Marshal(page)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[],"pagination":{"page":1,"limit":10,"total_pages":1,"total_results":0}}`, string(body))
}

func TestPaginate_Populate(t *testing.T) {
	db := seedKudos(t, 3)

	page, err := Paginate[models.Kudo](context.Background(), db, Params{Populate: "reactions,sender"})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	for _, k := range page.Items {
		assert.Len(t, k.Reactions, 1)
		require.NotNil(t, k.Sender)
		assert.Equal(t, "sender", k.Sender.UserName)
	}
}

func TestPaginate_PickWinsOverPopulate(t *testing.T) {
	db := seedKudos(t, 2)

	page, err := Paginate[models.Kudo](context.Background(), db, Params{
		Pick:     "id points",
		Populate: "reactions",
		SortBy:   "points",
	})
	require.NoError(t, err)
	assert.Equal(t, ProjectFields, page.Projection.Kind)
	for _, k := range page.Items {
		assert.Nil(t, k.Reactions)
	}

	body, err := json.Marshal(page)
	require.NoError(t, err)

	var decoded struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded))
	require.Len(t, decoded.Data, 2)
	for _, item := range decoded.Data {
		assert.Len(t, item, 2)
		assert.Contains(t, item, "id")
		assert.Contains(t, item, "points")
	}
	assert.EqualValues(t, 2, decoded.Data[0]["points"])
}

func TestPaginate_UnknownNames(t *testing.T) {
	db := seedKudos(t, 1)
	ctx := context.Background()

	tests := []struct {
		name   string
		params Params
	}{
		{name: "Sort field", params: Params{SortBy: "nope"}},
		{name: "Pick field", params: Params{Pick: "id password_hash"}},
		{name: "Populate relation", params: Params{Populate: "friends"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Paginate[models.Kudo](ctx, db, tt.params)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeValidation))
		})
	}
}

func TestPaginate_HiddenFieldsAreUnknown(t *testing.T) {
	db := seedKudos(t, 1)
	ctx := context.Background()

	tests := []struct {
		name   string
		params Params
	}{
		{name: "Sort by column", params: Params{SortBy: "password"}},
		{name: "Sort by Go name", params: Params{SortBy: "Password"}},
		{name: "Pick column", params: Params{Pick: "id password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Paginate[models.User](ctx, db, tt.params)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeValidation))
		})
	}

	_, err := Paginate[models.User](ctx, db, Params{SortBy: "user_name", Pick: "id user_name"})
	require.NoError(t, err)
}
