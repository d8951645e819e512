package common

import (
	"strconv"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		expected string
	}{
		{"zero", 0, "0"},
		{"below a thousand", 999, "999"},
		{"exactly a thousand", 1000, "1,000"},
		{"millions", 1234567, "1,234,567"},
		{"negative", -1500, "-1,500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatUnits(tt.count))
		})
	}
}

func TestJoinLimited(t *testing.T) {
	t.Run("fits", func(t *testing.T) {
		assert.Equal(t, "a\nb\nc", JoinLimited([]string{"a", "b", "c"}, 100))
	})

	t.Run("truncates with note", func(t *testing.T) {
		lines := make([]string, 100)
		for i := range lines {
			lines[i] = strings.Repeat("x", 50)
		}

		out := JoinLimited(lines, 500)

		assert.LessOrEqual(t, len(out), 500)
		assert.True(t, strings.HasSuffix(out, "more"))
		shown := strings.Count(out, strings.Repeat("x", 50))
		assert.Contains(t, out, "…and "+strconv.Itoa(100-shown)+" more")
	})

	t.Run("nothing fits", func(t *testing.T) {
		out := JoinLimited([]string{strings.Repeat("x", 50)}, 20)
		assert.Equal(t, "…and 1 more", out)
	})
}

func TestInteractionUserID(t *testing.T) {
	guild := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Member: &discordgo.Member{User: &discordgo.User{ID: "123456789"}},
	}}
	id, err := InteractionUserID(guild)
	require.NoError(t, err)
	assert.Equal(t, int64(123456789), id)

	dm := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		User: &discordgo.User{ID: "42"},
	}}
	id, err = InteractionUserID(dm)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = InteractionUserID(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}})
	assert.Error(t, err)

	_, err = InteractionUserID(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		User: &discordgo.User{ID: "not-a-number"},
	}})
	assert.Error(t, err)
}

func TestDisableComponents(t *testing.T) {
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Open", CustomID: "a"},
			discordgo.Button{Label: "Done", CustomID: "b"},
		}},
	}

	disabled := DisableComponents(components)

	require.Len(t, disabled, 1)
	row := disabled[0].(discordgo.ActionsRow)
	for _, c := range row.Components {
		assert.True(t, c.(discordgo.Button).Disabled)
	}
	assert.False(t, components[0].(discordgo.ActionsRow).Components[0].(discordgo.Button).Disabled)
}

func TestBuildMessageEdit_NilComponentsClear(t *testing.T) {
	edit := BuildMessageEdit(&discordgo.MessageEmbed{Title: "x"}, nil)

	require.NotNil(t, edit.Components)
	assert.Empty(t, *edit.Components)
	require.NotNil(t, edit.Embeds)
	assert.Equal(t, "x", (*edit.Embeds)[0].Title)
}
