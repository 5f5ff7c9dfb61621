package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/zhotheone/discordmusicbot/internal/domain/valueobjects"
)

// handleSettings handles the settings subcommands
func (h *Handler) handleSettings(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return respondError(s, i, "Missing subcommand")
	}

	sub := options[0]
	switch sub.Name {
	case "set":
		return h.handleSettingsSet(s, i, sub)
	case "show":
		return h.handleSettingsShow(s, i)
	}
	return respondError(s, i, "Unknown subcommand")
}

func (h *Handler) handleSettingsSet(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	var volume int
	var repeatInput string
	for _, opt := range sub.Options {
		switch opt.Name {
		case "volume":
			volume = int(opt.IntValue())
		case "repeat":
			repeatInput = opt.StringValue()
		}
	}

	mode, ok := valueobjects.ParseRepeatMode(repeatInput)
	if !ok {
		return respondError(s, i, "Unknown repeat mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.users.SetPreferences(ctx, i.Member.User.ID, volume, mode.String()); err != nil {
		h.logger.WithField("user", i.Member.User.ID).WithError(err).Error("Failed to save user preferences")
		return respondError(s, i, "Failed to save your preferences")
	}

	embed := NewEmbed().
		Title("⚙️ Preferences Saved").
		Description("They apply the next time you start playback in an empty session").
		Color(ColorSuccess).
		Field("Default Volume", fmt.Sprintf("%d%%", volume), true).
		Field("Default Repeat", mode.String(), true).
		Build()
	return respondEmbed(s, i, embed)
}

func (h *Handler) handleSettingsShow(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	prefs, ok := h.users.Preferences(ctx, i.Member.User.ID)
	if !ok {
		embed := NewEmbed().
			Title("⚙️ Your Preferences").
			Description("You have no stored preferences. Use `/settings set` to create them.").
			Color(ColorInfo).
			Build()
		return respondEmbed(s, i, embed)
	}

	embed := NewEmbed().
		Title("⚙️ Your Preferences").
		Color(ColorPrimary).
		Field("Default Volume", fmt.Sprintf("%d%%", prefs.Volume), true).
		Field("Default Repeat", prefs.RepeatMode, true).
		Build()
	return respondEmbed(s, i, embed)
}
