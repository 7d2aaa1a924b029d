package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfirmKeyMap_Assignments(t *testing.T) {
	k := DefaultConfirmKeyMap()

	tests := []struct {
		name     string
		binding  key.Binding
		expected []string
	}{
		{"Yes accepts both cases", k.Yes, []string{"y", "Y"}},
		{"No accepts both cases", k.No, []string{"n", "N"}},
		{"Submit is enter", k.Submit, []string{"enter"}},
		{"Cancel includes ctrl+c", k.Cancel, []string{"esc", "q", "ctrl+c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.binding.Keys())
		})
	}
}

func TestDefaultConfirmKeyMap_NoOverlap(t *testing.T) {
	k := DefaultConfirmKeyMap()
	seen := map[string]string{}
	for _, group := range k.FullHelp() {
		for _, b := range group {
			for _, key := range b.Keys() {
				prev, dup := seen[key]
				require.False(t, dup, "key %q bound to both %q and %q", key, prev, b.Help().Desc)
				seen[key] = b.Help().Desc
			}
		}
	}
}

func TestDefaultConfirmKeyMap_HelpText(t *testing.T) {
	k := DefaultConfirmKeyMap()
	for _, b := range k.ShortHelp() {
		require.NotEmpty(t, b.Help().Key)
		require.NotEmpty(t, b.Help().Desc)
	}
}
