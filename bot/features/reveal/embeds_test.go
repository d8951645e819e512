package reveal

import (
	"strings"
	"testing"

	"luckydraw/bot/common"
	"luckydraw/models"
	"luckydraw/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRevealEmbed(t *testing.T) {
	snap := revealSnapshot(service.RevealPhaseRevealing,
		service.RevealItem{Result: models.DrawnResult{Rank: 3, Name: "Sticker"}, State: service.ItemRevealed},
		service.RevealItem{Result: models.DrawnResult{Rank: 1, Name: "Grand Prize"}},
		service.RevealItem{Result: models.DrawnResult{Rank: 2, Name: "Tablet"}, State: service.ItemRevealed},
	)

	embed := BuildRevealEmbed(snap, models.DisplayModeBoth)

	lines := strings.Split(embed.Description, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "`01` #3 - Sticker", lines[0])
	assert.Contains(t, lines[1], "Tap Open #2")
	assert.NotContains(t, embed.Description, "Grand Prize", "pending prizes stay hidden")
	assert.Equal(t, "`03` 🌟 **#2 - Tablet**", lines[2])
	require.NotNil(t, embed.Footer)
	assert.Contains(t, embed.Footer.Text, "1 special prize")
	assert.Equal(t, common.ColorPrimary, embed.Color)
}

func TestBuildRevealEmbed_Celebrating(t *testing.T) {
	snap := revealSnapshot(service.RevealPhaseRevealing,
		service.RevealItem{Result: models.DrawnResult{Rank: 1, Name: "Grand Prize"}, Triggered: true},
	)
	snap.Celebrating = true

	embed := BuildRevealEmbed(snap, models.DisplayModeRank)

	assert.Equal(t, common.ColorGold, embed.Color)
	assert.True(t, strings.HasPrefix(embed.Title, "🎉"))
	assert.Contains(t, embed.Description, "Opening...")
}

func TestBuildRevealEmbed_LargeBatchFits(t *testing.T) {
	items := make([]service.RevealItem, 100)
	for i := range items {
		items[i] = service.RevealItem{
			Result: models.DrawnResult{Rank: 3, Name: strings.Repeat("Limited Edition Sticker ", 3)},
			State:  service.ItemRevealed,
		}
	}

	embed := BuildRevealEmbed(revealSnapshot(service.RevealPhaseRevealing, items...), models.DisplayModeBoth)

	assert.LessOrEqual(t, len(embed.Description), common.MaxEmbedDescription)
}

func TestBuildSummaryEmbed(t *testing.T) {
	snap := revealSnapshot(service.RevealPhaseSummarizing,
		service.RevealItem{Result: models.DrawnResult{Rank: 3, Name: "Sticker"}},
		service.RevealItem{Result: models.DrawnResult{Rank: 1, Name: "Grand Prize", RequiresShipping: true}},
		service.RevealItem{Result: models.DrawnResult{Rank: 3, Name: "Sticker"}},
	)

	embed := BuildSummaryEmbed(snap, models.DisplayModePrize)

	assert.Equal(t, "🌟 Grand Prize x**1** 📦\nSticker x**2**", embed.Description)
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "3", embed.Fields[0].Value)
	require.NotNil(t, embed.Footer)
	assert.Contains(t, embed.Footer.Text, "shipped")
}

func TestBuildSummaryEmbed_Done(t *testing.T) {
	snap := revealSnapshot(service.RevealPhaseDone,
		service.RevealItem{Result: models.DrawnResult{Rank: 3, Name: "Sticker"}},
	)

	embed := BuildEmbed(snap, models.DisplayModeRank)

	assert.Equal(t, common.ColorSuccess, embed.Color)
	assert.Equal(t, "#3 x**1**", embed.Description)
}

func TestBuildEmbed_PicksByPhase(t *testing.T) {
	item := service.RevealItem{Result: models.DrawnResult{Rank: 3, Name: "Sticker"}, State: service.ItemRevealed}

	assert.Contains(t, BuildEmbed(revealSnapshot(service.RevealPhaseRevealing, item), models.DisplayModeBoth).Title, "Lucky Draw")
	assert.Contains(t, BuildEmbed(revealSnapshot(service.RevealPhaseShipping, item), models.DisplayModeBoth).Title, "summary")
}
