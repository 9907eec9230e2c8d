package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		wantID string
	}{
		{name: "id", in: `{"id":"u1","name":"Ann","role":"admin","isVerified":true}`, wantID: "u1"},
		{name: "_id alias", in: `{"_id":"65fa","name":"Ann","role":"user"}`, wantID: "65fa"},
		{name: "id wins over _id", in: `{"id":"u1","_id":"65fa"}`, wantID: "u1"},
		{name: "no identity", in: `{"name":"Ann"}`, wantID: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u User
			require.NoError(t, json.Unmarshal([]byte(tt.in), &u))
			assert.Equal(t, tt.wantID, u.ID)
			assert.Equal(t, tt.wantID != "", u.HasIdentity())
		})
	}
}

func TestUser_UnmarshalJSON_Fields(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"id":"u1","name":"Ann","email":"a@b.com","isVerified":true,"role":"admin","avatar":"a.png","token":"tok"}`), &u))

	assert.Equal(t, User{ID: "u1", Name: "Ann", Email: "a@b.com", IsVerified: true, Role: RoleAdmin, Avatar: "a.png", Token: "tok"}, u)
	assert.True(t, u.Role.IsAdmin())
}

func TestUser_WithTokenDoesNotMutate(t *testing.T) {
	u := &User{ID: "u1"}
	c := u.WithToken("tok")

	assert.Equal(t, "tok", c.Token)
	assert.Empty(t, u.Token)

	var nilUser *User
	assert.Nil(t, nilUser.WithToken("tok"))
	assert.False(t, nilUser.HasIdentity())
}

func TestSortByNewest(t *testing.T) {
	now := time.Now()
	items := []Transcription{
		{ID: "old", CreatedAt: now.Add(-time.Hour)},
		{ID: "new", CreatedAt: now},
		{ID: "mid", CreatedAt: now.Add(-time.Minute)},
	}
	SortByNewest(items)

	assert.Equal(t, []string{"new", "mid", "old"}, []string{items[0].ID, items[1].ID, items[2].ID})
}

func TestQuizQuestion_OptionKeys(t *testing.T) {
	q := QuizQuestion{Options: map[string]string{"c": "3", "a": "1", "b": "2"}}
	assert.Equal(t, []string{"a", "b", "c"}, q.OptionKeys())
}
