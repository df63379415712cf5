// Package domain contains core concepts of the chat system.
// This file defines room key derivation.
// Rooms are transient fan-out groupings, derived and never stored.
package domain

import (
	"sort"
	"strings"
)

// Identity is the stable external user key (an email). It is supplied
// by the auth layer and never generated here.
type Identity = string

type RoomKey string

// RoomKind tags the two derivation strategies for room keys.
type RoomKind int

const (
	// RoomKindPairwise groups the two ends of a 1:1 conversation.
	RoomKindPairwise RoomKind = iota
	// RoomKindBroadcast groups every connection watching presence.
	RoomKindBroadcast
)

const (
	pairSeparator = "-"
	broadcastKey  = RoomKey("presence:broadcast")
)

// PairwiseRoom derives the room key for a 1:1 conversation.
// Participants are sorted lexicographically before joining, so both
// ends always compute the identical key regardless of who initiates.
func PairwiseRoom(a, b Identity) RoomKey {
	pair := SortedPair(a, b)
	return RoomKey(strings.Join(pair[:], pairSeparator))
}

// BroadcastRoom returns the single well-known key used to fan out
// presence snapshots to every watching connection.
func BroadcastRoom() RoomKey {
	return broadcastKey
}

// SortedPair returns the two identities in lexicographic order.
// Conversation documents are keyed by this ordering, so an unordered
// pair maps to exactly one document.
func SortedPair(a, b Identity) [2]Identity {
	pair := []string{a, b}
	sort.Strings(pair)
	return [2]Identity{pair[0], pair[1]}
}
