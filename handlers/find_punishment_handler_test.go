package handlers

import "testing"

func TestForeignRecordHidden(t *testing.T) {
	developers := []string{"dev-1", "dev-2"}

	tests := []struct {
		name           string
		recordGuildID  string
		invokerGuildID string
		userID         string
		want           bool
	}{
		{
			name:           "same guild is always visible",
			recordGuildID:  "guild-1",
			invokerGuildID: "guild-1",
			userID:         "mod-1",
			want:           false,
		},
		{
			name:           "foreign guild hidden from moderators",
			recordGuildID:  "guild-2",
			invokerGuildID: "guild-1",
			userID:         "mod-1",
			want:           true,
		},
		{
			name:           "foreign guild visible to developers",
			recordGuildID:  "guild-2",
			invokerGuildID: "guild-1",
			userID:         "dev-2",
			want:           false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := foreignRecordHidden(tt.recordGuildID, tt.invokerGuildID, tt.userID, developers)
			if got != tt.want {
				t.Errorf("foreignRecordHidden = %v, want %v", got, tt.want)
			}
		})
	}
}
