package room

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gumballrun/gumballrun/internal/model"
)

func visitor(id model.VisitorID, joined, started bool) model.Visitor {
	return model.Visitor{ID: id, HasJoinedTeam: joined, HasStarted: started}
}

func TestQuorumMet(t *testing.T) {
	tests := []struct {
		name     string
		visitors map[model.VisitorID]model.Visitor
		want     bool
	}{
		{
			name:     "no visitors",
			visitors: map[model.VisitorID]model.Visitor{},
			want:     false,
		},
		{
			name: "single ready visitor",
			visitors: map[model.VisitorID]model.Visitor{
				"v1": visitor("v1", true, true),
			},
			want: true,
		},
		{
			name: "visitor joined but not ready",
			visitors: map[model.VisitorID]model.Visitor{
				"v1": visitor("v1", true, false),
			},
			want: false,
		},
		{
			name: "visitor ready without joining",
			visitors: map[model.VisitorID]model.Visitor{
				"v1": visitor("v1", false, true),
			},
			want: false,
		},
		{
			name: "one laggard blocks everyone",
			visitors: map[model.VisitorID]model.Visitor{
				"v1": visitor("v1", true, true),
				"v2": visitor("v2", true, true),
				"v3": visitor("v3", false, false),
			},
			want: false,
		},
		{
			name: "all three ready",
			visitors: map[model.VisitorID]model.Visitor{
				"v1": visitor("v1", true, true),
				"v2": visitor("v2", true, true),
				"v3": visitor("v3", true, true),
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room := &model.Room{Visitors: tt.visitors}
			assert.Equal(t, tt.want, QuorumMet(room))
		})
	}
}

func TestGateStatus(t *testing.T) {
	room := &model.Room{
		Visitors: map[model.VisitorID]model.Visitor{
			"v1": visitor("v1", true, true),
			"v2": visitor("v2", true, false),
			"v3": visitor("v3", false, false),
		},
	}

	status := GateStatus(room)
	assert.Equal(t, 3, status.TotalVisitors)
	assert.Equal(t, 2, status.TotalJoined)
	assert.Equal(t, 1, status.PlayersStarted)
	assert.False(t, status.QuorumMet)
}
