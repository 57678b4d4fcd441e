package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onesmallstep/internal/metrics"
	"onesmallstep/internal/model"
	"onesmallstep/internal/service"
)

func TestParseDoneArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		want    service.StepCompletion
		wantErr bool
	}{
		{name: "step and rating", args: "4 6", want: service.StepCompletion{StepID: 4, AnxietyRating: 6}},
		{name: "with notes", args: " 12  3 felt   fine ", want: service.StepCompletion{StepID: 12, AnxietyRating: 3, Notes: "felt fine"}},
		{name: "rating out of range is left to the service", args: "1 11", want: service.StepCompletion{StepID: 1, AnxietyRating: 11}},
		{name: "missing rating", args: "4", wantErr: true},
		{name: "empty", args: "", wantErr: true},
		{name: "bad step", args: "x 5", wantErr: true},
		{name: "zero step", args: "0 5", wantErr: true},
		{name: "bad rating", args: "4 high", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDoneArgs(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCallback(t *testing.T) {
	prefix, id, err := parseCallback("confirm:17")
	require.NoError(t, err)
	assert.Equal(t, cbConfirmPrefix, prefix)
	assert.Equal(t, uint(17), id)

	for _, bad := range []string{"", "confirm", "confirm:", "level:-1", "phobia:abc"} {
		_, _, err := parseCallback(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseCategory(t *testing.T) {
	assert.Equal(t, model.CategoryCommon, parseCategory(" Common "))
	assert.Equal(t, model.CategoryRare, parseCategory("rare"))
	assert.Equal(t, service.CategoryAll, parseCategory(""))
	assert.Equal(t, service.CategoryAll, parseCategory("whatever"))
}

func TestShortTitle(t *testing.T) {
	assert.Equal(t, "Cartoon Spider", shortTitle("  Cartoon\nSpider ", 20))
	assert.Equal(t, "Cartoo…", shortTitle("Cartoon Spider", 7))
	assert.Equal(t, "C", shortTitle("Cartoon", 1))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "▱▱▱▱▱▱▱▱▱▱", progressBar(0))
	assert.Equal(t, "▰▰▰▱▱▱▱▱▱▱", progressBar(33))
	assert.Equal(t, "▰▰▰▰▰▰▰▰▰▱", progressBar(99))
	assert.Equal(t, "▰▰▰▰▰▰▰▰▰▰", progressBar(100))
}

func TestIconFor(t *testing.T) {
	assert.Equal(t, "🕷", iconFor("spider"))
	assert.Equal(t, "🔹", iconFor("unknown"))
}

func TestFormatBrowse(t *testing.T) {
	phobias := []model.Phobia{{ID: 1, Name: "Spiders"}}

	assert.Contains(t, formatBrowse(service.BrowseResult{Category: "rare", Phobias: phobias}), "Rare phobias")
	assert.Contains(t, formatBrowse(service.BrowseResult{Category: service.CategoryAll, Phobias: phobias}), "All phobias")
	assert.Contains(t, formatBrowse(service.BrowseResult{Category: service.CategoryAll, Query: "<b>", Phobias: phobias}), "&lt;b&gt;")
}

func TestFormatOverview(t *testing.T) {
	text := formatOverview(service.Overview{
		CompletedSteps: 4,
		Streak:         3,
		Weekly:         make([]model.UserProgress, 2),
		Message:        metrics.MessageHabit,
		ActivePhobias: []service.PhobiaProgress{
			{Phobia: model.Phobia{Name: "Spiders", IconResource: "spider"}, Completed: 4, Total: 12, Percent: 33},
		},
	})

	assert.Contains(t, text, "Streak: <b>3</b>")
	assert.Contains(t, text, "Completed steps: 4")
	assert.Contains(t, text, "This week: 2")
	assert.Contains(t, text, "You&#39;re building a great habit!")
	assert.Contains(t, text, "🕷 Spiders ▰▰▰▱▱▱▱▱▱▱ 33%")
}

func TestFormatCompletion(t *testing.T) {
	rating := 7
	text := formatCompletion(model.UserProgress{StepID: 5, AnxietyRating: &rating}, service.Overview{Streak: 1, Message: metrics.MessageGreatStart})
	assert.Contains(t, text, "Step #5 completed with anxiety 7/10")
	assert.Contains(t, text, "Great start! Keep going!")
}

func TestAllowed(t *testing.T) {
	open := &Bot{}
	assert.True(t, open.allowed(42))

	private := &Bot{ownerChatID: 7}
	assert.True(t, private.allowed(7))
	assert.False(t, private.allowed(42))
}
