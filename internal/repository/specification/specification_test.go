package specification

import (
	"testing"
	"time"

	"collectify-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPredicates(t *testing.T) {
	userId := uuid.New()
	groupId := uuid.New()
	now := time.Now()

	privateNote := &entity.Note{Id: uuid.New(), CreatorId: &userId}
	groupNote := &entity.Note{Id: uuid.New(), GroupId: &groupId}
	token := &entity.RefreshToken{Id: uuid.New(), UserId: userId, TokenHash: "abc", ExpiresAt: now.Add(time.Minute)}

	tests := []struct {
		name      string
		spec      Predicate
		candidate any
		want      bool
	}{
		{"by id match", ByID{ID: privateNote.Id}, privateNote, true},
		{"by id other", ByID{ID: uuid.New()}, privateNote, false},
		{"by id unknown type", ByID{ID: userId}, "not an entity", false},
		{"by ids", ByIDs{IDs: []uuid.UUID{groupNote.Id}}, groupNote, true},
		{"by email", ByEmail{Email: "a@x.com"}, &entity.User{Email: "a@x.com"}, true},
		{"by creator note", ByCreatorID{CreatorID: userId}, privateNote, true},
		{"by creator without creator", ByCreatorID{CreatorID: userId}, groupNote, false},
		{"by group note", ByGroupID{GroupID: groupId}, groupNote, true},
		{"by group private note", ByGroupID{GroupID: groupId}, privateNote, false},
		{"by group member", ByGroupID{GroupID: groupId}, &entity.GroupMember{GroupId: groupId}, true},
		{"by member", ByMemberID{MemberID: userId}, &entity.GroupMember{MemberId: userId}, true},
		{"owned token", UserOwnedBy{UserID: userId}, token, true},
		{"token hash", ByTokenHash{Hash: "abc"}, token, true},
		{"expires after now", ExpiresAfter{Time: now}, token, true},
		{"expires after later", ExpiresAfter{Time: now.Add(time.Hour)}, token, false},
		{"expired at later", ExpiredAt{Time: now.Add(time.Hour)}, token, true},
		{"expired at exact", ExpiredAt{Time: token.ExpiresAt}, token, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.spec.IsSatisfiedBy(tt.candidate))
		})
	}
}

func TestOrderBy_Less(t *testing.T) {
	older := &entity.Group{CreatedAt: time.Unix(100, 0), UpdatedAt: time.Unix(500, 0)}
	newer := &entity.Group{CreatedAt: time.Unix(200, 0), UpdatedAt: time.Unix(300, 0)}

	assert.True(t, OrderBy{Field: "created_at", Desc: true}.Less(newer, older))
	assert.True(t, OrderBy{Field: "created_at"}.Less(older, newer))
	assert.True(t, OrderBy{Field: "updated_at", Desc: true}.Less(older, newer))
}
