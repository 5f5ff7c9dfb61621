package commands

import (
	"github.com/bwmarrin/discordgo"

	"github.com/zhotheone/discordmusicbot/internal/filters"
)

func floatPtr(v float64) *float64 { return &v }

// filterChoices builds one choice per known filter
func filterChoices() []*discordgo.ApplicationCommandOptionChoice {
	kinds := filters.Kinds()
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(kinds))
	for _, kind := range kinds {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  kind.String(),
			Value: kind.String(),
		})
	}
	return choices
}

// presetChoices builds one choice per known preset
func presetChoices() []*discordgo.ApplicationCommandOptionChoice {
	names := filters.PresetNames()
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(names))
	for _, name := range names {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  name,
			Value: name,
		})
	}
	return choices
}

// GetCommands returns all slash command definitions
func GetCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		// Playback commands
		{
			Name:        "play",
			Description: "Play music from YouTube, Spotify, a direct URL, or a search query",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "query",
					Description: "URL (YouTube/Spotify) or search query",
					Required:    true,
				},
			},
		},
		{
			Name:        "pause",
			Description: "Pause the current playback",
		},
		{
			Name:        "resume",
			Description: "Resume paused playback",
		},
		{
			Name:        "skip",
			Description: "Skip the current track",
		},
		{
			Name:        "stop",
			Description: "Stop playback, clear the queue and leave the voice channel",
		},
		{
			Name:        "volume",
			Description: "Adjust playback volume (0-150%)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "level",
					Description: "Volume level (0-150, 100 = normal)",
					Required:    true,
					MinValue:    floatPtr(0),
					MaxValue:    150,
				},
			},
		},
		{
			Name:        "repeat",
			Description: "Configure repeat mode for playback",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "mode",
					Description: "Repeat mode",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Off", Value: "off"},
						{Name: "Single Track", Value: "track"},
						{Name: "Entire Queue", Value: "queue"},
					},
				},
			},
		},

		{
			Name:        "playlist",
			Description: "Manage named playlists for this server",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "create",
					Description: "Create a new empty playlist",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "Playlist name",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "delete",
					Description: "Delete a playlist and all its tracks",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "Playlist name",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "Show all playlists of this server",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "show",
					Description: "Show the tracks of a playlist",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "Playlist name",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Resolve a query and add the results to a playlist",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "Playlist name",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "query",
							Description: "URL (YouTube/Spotify) or search query",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "play",
					Description: "Queue every track of a playlist",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "Playlist name",
							Required:    true,
						},
					},
				},
			},
		},

		// Queue commands
		{
			Name:        "queue",
			Description: "Display the current track queue",
		},
		{
			Name:        "nowplaying",
			Description: "Show information about the currently playing track",
		},

		// Filter commands
		{
			Name:        "filter",
			Description: "Manage audio filters",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "enable",
					Description: "Enable a filter, optionally with custom parameters",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "Filter to enable",
							Required:    true,
							Choices:     filterChoices(),
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "params",
							Description: "Parameter overrides, e.g. gain=20,frequency=300",
							Required:    false,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "disable",
					Description: "Disable a filter",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "Filter to disable",
							Required:    true,
							Choices:     filterChoices(),
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "clear",
					Description: "Disable all filters",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "Show enabled filters and available parameters",
				},
			},
		},
		{
			Name:        "preset",
			Description: "Apply a curated filter combination",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "name",
					Description: "Preset to apply",
					Required:    true,
					Choices:     presetChoices(),
				},
			},
		},

		// Utility commands
		{
			Name:        "settings",
			Description: "Manage your personal playback preferences",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set",
					Description: "Set your default volume and repeat mode",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "volume",
							Description: "Default volume applied when you start playback (0-150)",
							Required:    true,
							MinValue:    floatPtr(0),
							MaxValue:    150,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "repeat",
							Description: "Default repeat mode",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "Off", Value: "off"},
								{Name: "Single Track", Value: "track"},
								{Name: "Entire Queue", Value: "queue"},
							},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "show",
					Description: "Show your stored preferences",
				},
			},
		},
		{
			Name:        "history",
			Description: "Show recently played tracks",
		},
		{
			Name:        "stats",
			Description: "Display bot statistics and status",
		},
		{
			Name:        "help",
			Description: "Show all available commands and usage",
		},
	}
}
