package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPairwiseRoom_OrderIndependent(t *testing.T) {
	req := require.New(t)

	tests := []struct {
		name string
		a, b Identity
	}{
		{name: "already sorted", a: "alice", b: "bob"},
		{name: "reversed", a: "bob", b: "alice"},
		{name: "emails", a: "zoe@mail.com", b: "adam@mail.com"},
		{name: "same identity", a: "alice", b: "alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req.Equal(PairwiseRoom(tt.a, tt.b), PairwiseRoom(tt.b, tt.a))
		})
	}
}

func TestPairwiseRoom_Key(t *testing.T) {
	req := require.New(t)

	// Both ends must land on the identical key whoever initiates
	req.Equal(RoomKey("alice-bob"), PairwiseRoom("alice", "bob"))
	req.Equal(RoomKey("alice-bob"), PairwiseRoom("bob", "alice"))
}

func TestBroadcastRoom_DistinctFromPairwise(t *testing.T) {
	req := require.New(t)
	req.NotEqual(BroadcastRoom(), PairwiseRoom("alice", "bob"))
}

func TestSortedPair(t *testing.T) {
	req := require.New(t)
	req.Equal([2]Identity{"alice", "bob"}, SortedPair("bob", "alice"))
	req.Equal([2]Identity{"alice", "bob"}, SortedPair("alice", "bob"))
}
