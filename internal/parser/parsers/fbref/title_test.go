package fbref

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTitle(t *testing.T) {
	tests := []struct {
		title string
		home  string
		away  string
	}{
		{"Crystal Palace vs. Liverpool Match Report", "Crystal Palace", "Liverpool"},
		{"Brighton & Hove Albion vs. Nott'ham Forest Match Report", "Brighton & Hove Albion", "Nott'ham Forest"},
		{"  Arsenal vs. Chelsea Match Report  ", "Arsenal", "Chelsea"},
		{"Arsenal vs. Chelsea", "Arsenal", "Chelsea"},
		{"Crystal\u00a0Palace vs. Liverpool Match Report", "Crystal Palace", "Liverpool"},
		{"West Ham  United vs.\u00a0Everton\nMatch Report", "West Ham United", "Everton"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			home, away, err := ParseTitle(tt.title)
			require.NoError(t, err)
			assert.Equal(t, tt.home, home)
			assert.Equal(t, tt.away, away)
		})
	}
}

func TestParseTitleErrors(t *testing.T) {
	for _, title := range []string{
		"",
		"Crystal Palace v Liverpool Match Report",
		"Crystal Palace vs Liverpool Match Report",
		"A vs. B vs. C Match Report",
		" vs. Liverpool Match Report",
		"Crystal Palace vs. Match Report",
	} {
		t.Run(title, func(t *testing.T) {
			_, _, err := ParseTitle(title)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrTitleFormat))
		})
	}
}
