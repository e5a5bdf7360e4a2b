package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomKey(t *testing.T) {
	t.Run("commutative", func(t *testing.T) {
		pairs := [][2]string{
			{"u1", "u2"},
			{"abc", "abd"},
			{"9f2c", "0a11"},
			{"4c7e9b50-3f1a-4f6e-9c3e-111111111111", "0b8d2e40-5c2b-4a7d-8d4f-222222222222"},
		}
		for _, p := range pairs {
			assert.Equal(t, RoomKey(p[0], p[1]), RoomKey(p[1], p[0]))
		}
	})

	t.Run("deterministic and sorted", func(t *testing.T) {
		assert.Equal(t, "u1_u2", RoomKey("u1", "u2"))
		assert.Equal(t, "u1_u2", RoomKey("u2", "u1"))
	})

	t.Run("distinct pairs get distinct keys", func(t *testing.T) {
		assert.NotEqual(t, RoomKey("u1", "u2"), RoomKey("u1", "u3"))
		assert.NotEqual(t, RoomKey("u1", "u2"), RoomKey("u2", "u3"))
	})
}

func TestRoomParticipants(t *testing.T) {
	room := &Room{
		ID: "u1_u2",
		Participants: [2]Identity{
			{UserID: "u1", Username: "alice"},
			{UserID: "u2", Username: "bob"},
		},
	}

	p, ok := room.Participant("u2")
	assert.True(t, ok)
	assert.Equal(t, "bob", p.Username)

	_, ok = room.Participant("u3")
	assert.False(t, ok)

	other, ok := room.Other("u1")
	assert.True(t, ok)
	assert.Equal(t, "u2", other.UserID)

	_, ok = room.Other("u3")
	assert.False(t, ok)
}
