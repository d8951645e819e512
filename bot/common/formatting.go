package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// FormatUnits formats a unit count with thousand separators
func FormatUnits(count int) string {
	str := strconv.Itoa(count)
	if count < 0 {
		return "-" + FormatUnits(-count)
	}

	n := len(str)
	if n <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in the user's local timezone.
// Format types: "t" = short time, "d" = short date, "f" = short date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// JoinLimited joins lines with newlines. When the result would exceed limit
// bytes, trailing lines are replaced by a "…and N more" note.
func JoinLimited(lines []string, limit int) string {
	joined := strings.Join(lines, "\n")
	if len(joined) <= limit {
		return joined
	}

	reserve := len(fmt.Sprintf("\n…and %d more", len(lines)))
	var b strings.Builder
	shown := 0
	for _, line := range lines {
		extra := len(line)
		if shown > 0 {
			extra++
		}
		if b.Len()+extra > limit-reserve {
			break
		}
		if shown > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		shown++
	}

	if shown > 0 {
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "…and %d more", len(lines)-shown)
	return b.String()
}

// InteractionUserID returns the Discord ID of the user behind an interaction,
// both in guilds and in DMs
func InteractionUserID(i *discordgo.InteractionCreate) (int64, error) {
	var user *discordgo.User
	if i.Member != nil && i.Member.User != nil {
		user = i.Member.User
	} else {
		user = i.User
	}
	if user == nil {
		return 0, fmt.Errorf("interaction has no user")
	}

	id, err := strconv.ParseInt(user.ID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid Discord ID %s: %w", user.ID, err)
	}
	return id, nil
}
