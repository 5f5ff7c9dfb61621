package commands

import (
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/zhotheone/discordmusicbot/internal/domain/entities"
	"github.com/zhotheone/discordmusicbot/internal/domain/valueobjects"
	"github.com/zhotheone/discordmusicbot/internal/session"
)

func TestParseFilterParams(t *testing.T) {
	params, err := parseFilterParams("gain=20,frequency=300")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params["gain"] != 20 || params["frequency"] != 300 {
		t.Errorf("unexpected params: %v", params)
	}

	params, err = parseFilterParams(" gain = 1.5 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params["gain"] != 1.5 {
		t.Errorf("expected gain 1.5, got %v", params["gain"])
	}
}

func TestParseFilterParamsEmpty(t *testing.T) {
	params, err := parseFilterParams("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params != nil {
		t.Errorf("expected nil params for empty input, got %v", params)
	}
}

func TestParseFilterParamsMalformed(t *testing.T) {
	if _, err := parseFilterParams("gain"); err == nil {
		t.Error("expected error for pair without value")
	}
	if _, err := parseFilterParams("gain=loud"); err == nil {
		t.Error("expected error for non-numeric value")
	}
}

func TestVolumeBar(t *testing.T) {
	if got := volumeBar(0); strings.Contains(got, "█") {
		t.Errorf("expected empty bar at 0, got %s", got)
	}
	if got := volumeBar(150); strings.Contains(got, "░") {
		t.Errorf("expected full bar at 150, got %s", got)
	}
	if got := volumeBar(75); strings.Count(got, "█") != 5 {
		t.Errorf("expected half bar at 75, got %s", got)
	}
}

func queueStatus(n int) session.Status {
	tracks := make([]*entities.Track, 0, n)
	for i := 0; i < n; i++ {
		tracks = append(tracks, entities.NewTrack(
			"Track", "https://example.com", 3*time.Minute,
			valueobjects.SourceTypeYouTube, "user", "guild"))
	}
	return session.Status{
		State:   valueobjects.SessionPlaying,
		Current: tracks[0],
		Queue:   tracks[1:],
		Repeat:  valueobjects.RepeatModeOff,
		Volume:  50,
	}
}

func TestBuildQueuePageClampsPage(t *testing.T) {
	st := queueStatus(25)

	embed, _ := buildQueuePage(st, 99)
	if !strings.Contains(embed.Title, "Page 3/3") {
		t.Errorf("expected clamp to last page, got title %q", embed.Title)
	}

	embed, _ = buildQueuePage(st, -5)
	if !strings.Contains(embed.Title, "Page 1/3") {
		t.Errorf("expected clamp to first page, got title %q", embed.Title)
	}
}

func TestBuildQueuePageSinglePageHasNoButtons(t *testing.T) {
	st := queueStatus(3)

	_, components := buildQueuePage(st, 0)
	if components != nil {
		t.Errorf("expected no buttons for single page, got %v", components)
	}
}

func TestQueuePageButtonsCarryTargetPage(t *testing.T) {
	components := queuePageButtons(1, 3)
	if len(components) != 1 {
		t.Fatalf("expected one action row, got %d", len(components))
	}

	row, ok := components[0].(discordgo.ActionsRow)
	if !ok {
		t.Fatalf("expected ActionsRow, got %T", components[0])
	}

	prev := row.Components[1].(discordgo.Button)
	if prev.CustomID != "queue:page:0" {
		t.Errorf("expected prev button target page 0, got %s", prev.CustomID)
	}
	next := row.Components[3].(discordgo.Button)
	if next.CustomID != "queue:page:2" {
		t.Errorf("expected next button target page 2, got %s", next.CustomID)
	}
}

func TestGetCommandsHaveUniqueNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, cmd := range GetCommands() {
		if seen[cmd.Name] {
			t.Errorf("duplicate command name %s", cmd.Name)
		}
		seen[cmd.Name] = true
		if cmd.Description == "" {
			t.Errorf("command %s missing description", cmd.Name)
		}
	}
}
