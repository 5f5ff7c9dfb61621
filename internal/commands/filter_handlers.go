package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	apperrors "github.com/zhotheone/discordmusicbot/internal/errors"
	"github.com/zhotheone/discordmusicbot/internal/filters"
)

// handleFilter handles the filter subcommands
func (h *Handler) handleFilter(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return respondError(s, i, "Missing subcommand")
	}

	sub := options[0]
	switch sub.Name {
	case "enable":
		return h.handleFilterEnable(s, i, sub)
	case "disable":
		return h.handleFilterDisable(s, i, sub)
	case "clear":
		return h.handleFilterClear(s, i)
	case "list":
		return h.handleFilterList(s, i)
	}
	return respondError(s, i, "Unknown subcommand")
}

func (h *Handler) handleFilterEnable(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	kind, err := filters.ParseKind(subOptionString(sub, "name"))
	if err != nil {
		return respondError(s, i, apperrors.GetUserMessage(err))
	}

	params, err := parseFilterParams(subOptionString(sub, "params"))
	if err != nil {
		return respondError(s, i, "Could not parse parameters. Use name=value pairs, e.g. `gain=20,frequency=300`")
	}

	sess := h.guildSession(i.GuildID)
	if sess == nil {
		return respondError(s, i, apperrors.GetUserMessage(apperrors.ErrNothingPlaying))
	}

	if err := sess.EnableFilter(kind, params); err != nil {
		return respondError(s, i, apperrors.GetUserMessage(err))
	}

	embed := NewEmbed().
		Title("🎛️ Filter Enabled").
		Description(fmt.Sprintf("**%s** is now active. It applies from the next track.", kind)).
		Color(ColorSuccess).
		Build()
	return respondEmbed(s, i, embed)
}

func (h *Handler) handleFilterDisable(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	kind, err := filters.ParseKind(subOptionString(sub, "name"))
	if err != nil {
		return respondError(s, i, apperrors.GetUserMessage(err))
	}

	sess := h.guildSession(i.GuildID)
	if sess == nil {
		return respondError(s, i, apperrors.GetUserMessage(apperrors.ErrNothingPlaying))
	}

	if err := sess.DisableFilter(kind); err != nil {
		return respondError(s, i, apperrors.GetUserMessage(err))
	}

	embed := NewEmbed().
		Title("🎛️ Filter Disabled").
		Description(fmt.Sprintf("**%s** has been turned off", kind)).
		Color(ColorInfo).
		Build()
	return respondEmbed(s, i, embed)
}

func (h *Handler) handleFilterClear(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	sess := h.guildSession(i.GuildID)
	if sess == nil {
		return respondError(s, i, apperrors.GetUserMessage(apperrors.ErrNothingPlaying))
	}

	if err := sess.ClearFilters(); err != nil {
		return respondError(s, i, apperrors.GetUserMessage(err))
	}

	embed := NewEmbed().
		Title("🎛️ Filters Cleared").
		Description("All filters have been disabled").
		Color(ColorInfo).
		Build()
	return respondEmbed(s, i, embed)
}

func (h *Handler) handleFilterList(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	builder := NewEmbed().
		Title("🎛️ Audio Filters").
		Color(ColorPrimary)

	if sess := h.guildSession(i.GuildID); sess != nil {
		if st, err := sess.Status(); err == nil && len(st.Filters) > 0 {
			names := make([]string, 0, len(st.Filters))
			for _, kind := range st.Filters {
				names = append(names, "**"+kind.String()+"**")
			}
			builder.Field("Enabled", strings.Join(names, ", "), false)
		}
	}

	var sb strings.Builder
	for _, kind := range filters.Kinds() {
		params, err := filters.DescribeParams(kind)
		if err != nil {
			continue
		}
		if len(params) == 0 {
			sb.WriteString(fmt.Sprintf("**%s**\n", kind))
		} else {
			sb.WriteString(fmt.Sprintf("**%s** • %s\n", kind, strings.Join(params, ", ")))
		}
	}
	builder.Field("Available", sb.String(), false)
	builder.Footer("Use /filter enable <name> [params] or /preset <name>")

	return respondEmbed(s, i, builder.Build())
}

// handlePreset handles the preset command
func (h *Handler) handlePreset(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	options := i.ApplicationCommandData().Options
	name := options[0].StringValue()

	sess := h.guildSession(i.GuildID)
	if sess == nil {
		return respondError(s, i, apperrors.GetUserMessage(apperrors.ErrNothingPlaying))
	}

	if err := sess.ApplyPreset(name); err != nil {
		return respondError(s, i, apperrors.GetUserMessage(err))
	}

	// Remember the preset for the guild
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.settings.SetActivePreset(ctx, i.GuildID, name); err != nil {
		h.logger.WithGuild(i.GuildID).WithError(err).Warn("Failed to persist preset")
	}

	embed := NewEmbed().
		Title("🎚️ Preset Applied").
		Description(fmt.Sprintf("**%s** replaced the active filter chain. It applies from the next track.", name)).
		Color(ColorSuccess).
		Build()
	return respondEmbed(s, i, embed)
}

// subOptionString reads a string option of a subcommand, or ""
func subOptionString(sub *discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range sub.Options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

// parseFilterParams parses "gain=20,frequency=300" into filter parameters.
// An empty input yields nil, meaning filter defaults.
func parseFilterParams(input string) (filters.Params, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	params := make(filters.Params)
	for _, pair := range strings.Split(input, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		key, value, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("malformed pair %q", pair)
		}

		num, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed value in %q", pair)
		}
		params[strings.TrimSpace(key)] = num
	}

	if len(params) == 0 {
		return nil, nil
	}
	return params, nil
}
