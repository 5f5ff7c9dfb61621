package commands

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/zhotheone/discordmusicbot/internal/domain/valueobjects"
	apperrors "github.com/zhotheone/discordmusicbot/internal/errors"
	"github.com/zhotheone/discordmusicbot/internal/session"
	"github.com/zhotheone/discordmusicbot/internal/validation"
)

// handleQueue handles the queue command
func (h *Handler) handleQueue(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	sess := h.guildSession(i.GuildID)
	if sess == nil {
		return respondEmbed(s, i, emptyQueueEmbed())
	}

	st, err := sess.Status()
	if err != nil {
		return respondEmbed(s, i, emptyQueueEmbed())
	}

	embed, components := buildQueuePage(st, 0)
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		},
	})
}

// handleNowPlaying handles the nowplaying command
func (h *Handler) handleNowPlaying(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	sess := h.guildSession(i.GuildID)
	if sess == nil {
		return respondError(s, i, apperrors.GetUserMessage(apperrors.ErrNothingPlaying))
	}

	st, err := sess.Status()
	if err != nil || st.Current == nil {
		return respondError(s, i, apperrors.GetUserMessage(apperrors.ErrNothingPlaying))
	}

	stateIcon := "▶️"
	if st.State == valueobjects.SessionPaused {
		stateIcon = "⏸️"
	}

	builder := NewEmbed().
		Title(fmt.Sprintf("%s Now Playing", stateIcon)).
		Description(fmt.Sprintf("**%s**", st.Current.DisplayName())).
		Color(ColorPrimary).
		Thumbnail(st.Current.Thumbnail).
		Field("Duration", st.Current.DurationFormatted(), true).
		Field("Volume", fmt.Sprintf("%d%%", st.Volume), true).
		Field("Repeat", st.Repeat.String(), true).
		Field("Requested by", fmt.Sprintf("<@%s>", st.Current.RequestedBy), true)

	if len(st.Filters) > 0 {
		names := make([]string, 0, len(st.Filters))
		for _, kind := range st.Filters {
			names = append(names, kind.String())
		}
		builder.Field("Filters", strings.Join(names, ", "), true)
	}

	builder.Footer(fmt.Sprintf("%d tracks in queue", len(st.Queue)))
	return respondEmbed(s, i, builder.Build())
}

func emptyQueueEmbed() *discordgo.MessageEmbed {
	return NewEmbed().
		Title("Queue").
		Description("The queue is empty. Use `/play` to add tracks!").
		Color(ColorInfo).
		Build()
}

const itemsPerPage = 10

// buildQueuePage builds one page of the queue display with navigation buttons
func buildQueuePage(st session.Status, page int) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	if st.Current == nil && len(st.Queue) == 0 {
		return emptyQueueEmbed(), nil
	}

	total := len(st.Queue)
	totalPages := (total + itemsPerPage - 1) / itemsPerPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 0 {
		page = 0
	}
	if page >= totalPages {
		page = totalPages - 1
	}

	builder := NewEmbed().
		Title(fmt.Sprintf("Music Queue (Page %d/%d)", page+1, totalPages)).
		Color(ColorPrimary)

	var sb strings.Builder
	if st.Current != nil {
		sb.WriteString(fmt.Sprintf("► **%s** `[%s]`\n\n",
			validation.TruncateString(st.Current.DisplayName(), 50), st.Current.DurationFormatted()))
	}

	start := page * itemsPerPage
	end := start + itemsPerPage
	if end > total {
		end = total
	}
	for idx := start; idx < end; idx++ {
		track := st.Queue[idx]
		sb.WriteString(fmt.Sprintf("`%2d.` **%s** `[%s]`\n",
			idx+1, validation.TruncateString(track.DisplayName(), 50), track.DurationFormatted()))
	}
	if total == 0 {
		sb.WriteString("Nothing queued after the current track")
	}
	builder.Description(sb.String())

	repeatIcon := "➡️"
	switch st.Repeat {
	case valueobjects.RepeatModeTrack:
		repeatIcon = "🔂"
	case valueobjects.RepeatModeQueue:
		repeatIcon = "🔁"
	}
	builder.Footer(fmt.Sprintf("Total: %d tracks • Repeat: %s %s • Volume: %d%%",
		total, repeatIcon, st.Repeat, st.Volume))

	return builder.Build(), queuePageButtons(page, totalPages)
}

// queuePageButtons creates navigation buttons; custom IDs carry the target
// page so the click handler does not have to parse the rendered message
func queuePageButtons(page, totalPages int) []discordgo.MessageComponent {
	if totalPages <= 1 {
		return nil
	}

	buttons := []discordgo.MessageComponent{
		discordgo.Button{
			Label:    "⏮️",
			Style:    discordgo.SecondaryButton,
			CustomID: "queue:page:0",
			Disabled: page == 0,
		},
		discordgo.Button{
			Label:    "◀️",
			Style:    discordgo.PrimaryButton,
			CustomID: fmt.Sprintf("queue:page:%d", page-1),
			Disabled: page == 0,
		},
		discordgo.Button{
			Label:    fmt.Sprintf("Page %d/%d", page+1, totalPages),
			Style:    discordgo.SecondaryButton,
			CustomID: "queue:noop",
			Disabled: true,
		},
		discordgo.Button{
			Label:    "▶️",
			Style:    discordgo.PrimaryButton,
			CustomID: fmt.Sprintf("queue:page:%d", page+1),
			Disabled: page >= totalPages-1,
		},
		discordgo.Button{
			Label:    "⏭️",
			Style:    discordgo.SecondaryButton,
			CustomID: fmt.Sprintf("queue:page:%d", totalPages-1),
			Disabled: page >= totalPages-1,
		},
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: buttons},
	}
}
