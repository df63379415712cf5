package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModerator_Censor_Masks_Listed_Words(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"idiot", "dumb"}, '*')
	req.NoError(err)

	req.Equal("you *****", moderator.Censor("you idiot"))
	req.Equal("**** and ***** alike", moderator.Censor("dumb and idiot alike"))
}

func TestModerator_Censor_Is_Case_Insensitive(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"idiot"}, '*')
	req.NoError(err)

	req.Equal("you *****!", moderator.Censor("you IdIoT!"))
}

func TestModerator_Censor_Sees_Through_Separators(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"idiot"}, '*')
	req.NoError(err)

	// Punctuation inside the word is masked along with it
	req.Equal("you *********", moderator.Censor("you i.d.i.o.t"))
}

func TestModerator_Censor_Leaves_Clean_Text_Alone(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"idiot"}, '*')
	req.NoError(err)

	clean := "a perfectly polite sentence"
	req.Equal(clean, moderator.Censor(clean))
}

func TestModerator_Empty_Word_List_Passes_Through(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator(nil, '*')
	req.NoError(err)

	req.Equal("anything goes", moderator.Censor("anything goes"))
}
