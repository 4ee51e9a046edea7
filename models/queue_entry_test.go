package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompatible(t *testing.T) {
	entry := func(id, gender, pref string) QueueEntry {
		return QueueEntry{UserID: id, Gender: gender, GenderPreference: pref}
	}

	tests := []struct {
		name string
		a, b QueueEntry
		want bool
	}{
		{"never self", entry("x", "male", PreferenceBoth), entry("x", "male", PreferenceBoth), false},
		{"mutual preference", entry("a", "female", "male"), entry("b", "male", "female"), true},
		{"one sided", entry("a", "female", "female"), entry("b", "male", "female"), false},
		{"both is wildcard", entry("a", "female", PreferenceBoth), entry("b", "male", PreferenceBoth), true},
		{"mixed both and specific", entry("a", "male", PreferenceBoth), entry("b", "male", "male"), true},
		{"missing preference acts as wildcard", entry("a", "female", ""), entry("b", "male", "female"), true},
		{"preference against missing gender", entry("a", "", "male"), entry("b", "male", "female"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compatible(tt.a, tt.b))
			assert.Equal(t, tt.want, Compatible(tt.b, tt.a), "compatibility must be symmetric")
		})
	}
}
