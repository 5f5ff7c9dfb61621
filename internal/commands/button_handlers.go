package commands

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// handleButtonInteraction handles pagination button clicks
func (h *Handler) handleButtonInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID

	// Custom ID format: "queue:page:<n>"
	parts := strings.Split(customID, ":")
	if len(parts) != 3 || parts[0] != "queue" || parts[1] != "page" {
		return
	}

	page, err := strconv.Atoi(parts[2])
	if err != nil {
		return
	}

	sess := h.guildSession(i.GuildID)
	if sess == nil {
		return
	}
	st, err := sess.Status()
	if err != nil {
		return
	}

	embed, components := buildQueuePage(st, page)
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		},
	})
	if err != nil {
		h.logger.WithError(err).Warn("Failed to update queue page")
	}
}
