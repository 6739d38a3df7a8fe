package moods

import (
	"testing"
)

func fp(v float64) *float64 { return &v }

func featured(id int64, title string, energy, valence, dance, acoustic float64) Song {
	return Song{
		ID:           id,
		Title:        title,
		Artist:       "Test Artist",
		Energy:       fp(energy),
		Valence:      fp(valence),
		Danceability: fp(dance),
		Acousticness: fp(acoustic),
	}
}

func TestMoodName(t *testing.T) {
	tests := []struct {
		name     string
		centroid map[string]float64
		want     string
	}{
		{
			name: "high energy high valence",
			centroid: map[string]float64{
				"energy":       0.8,
				"valence":      0.7,
				"danceability": 0.6,
				"acousticness": 0.2,
			},
			want: "Upbeat Party",
		},
		{
			name: "high energy low valence",
			centroid: map[string]float64{
				"energy":       0.8,
				"valence":      0.3,
				"danceability": 0.6,
				"acousticness": 0.2,
			},
			want: "Intense & Dark",
		},
		{
			name: "low energy high valence",
			centroid: map[string]float64{
				"energy":       0.4,
				"valence":      0.7,
				"danceability": 0.5,
				"acousticness": 0.3,
			},
			want: "Chill & Happy",
		},
		{
			name: "low energy low valence",
			centroid: map[string]float64{
				"energy":       0.3,
				"valence":      0.3,
				"danceability": 0.4,
				"acousticness": 0.4,
			},
			want: "Reflective & Melancholy",
		},
		{
			name: "high acousticness adds modifier",
			centroid: map[string]float64{
				"energy":       0.4,
				"valence":      0.7,
				"danceability": 0.5,
				"acousticness": 0.8,
			},
			want: "Chill & Happy (Acoustic)",
		},
		{
			name: "boundary energy exactly 0.6 is low",
			centroid: map[string]float64{
				"energy":       0.6,
				"valence":      0.7,
				"danceability": 0.5,
				"acousticness": 0.2,
			},
			want: "Chill & Happy",
		},
		{
			name: "boundary valence exactly 0.5 is low",
			centroid: map[string]float64{
				"energy":       0.8,
				"valence":      0.5,
				"danceability": 0.6,
				"acousticness": 0.2,
			},
			want: "Intense & Dark",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := moodName(tt.centroid); got != tt.want {
				t.Errorf("moodName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectEmptyInput(t *testing.T) {
	groups, ungrouped := Detect(nil, DefaultConfig())
	if groups != nil || ungrouped != nil {
		t.Errorf("Detect(nil) = %v, %v, want nil, nil", groups, ungrouped)
	}
}

func TestDetectMissingFeaturesAreUngrouped(t *testing.T) {
	songs := []Song{
		{ID: 1, Title: "No Features"},
		{ID: 2, Title: "Partial", Energy: fp(0.5), Valence: fp(0.5)},
	}

	groups, ungrouped := Detect(songs, DefaultConfig())
	if len(groups) != 0 {
		t.Errorf("got %d groups, want 0", len(groups))
	}
	if len(ungrouped) != 2 {
		t.Errorf("got %d ungrouped songs, want 2", len(ungrouped))
	}
}

func TestDetectFewerSongsThanClusters(t *testing.T) {
	songs := []Song{
		featured(1, "One", 0.8, 0.8, 0.7, 0.1),
		featured(2, "Two", 0.2, 0.2, 0.3, 0.8),
	}

	groups, ungrouped := Detect(songs, Config{NumClusters: 3, MinGroupSize: 1})
	if len(groups) != 0 {
		t.Errorf("got %d groups, want 0", len(groups))
	}
	if len(ungrouped) != 2 {
		t.Errorf("got %d ungrouped songs, want 2", len(ungrouped))
	}
}

func TestDetectSeparatesDistinctMoods(t *testing.T) {
	// Two tight blobs far apart in feature space.
	var songs []Song
	for i := 0; i < 5; i++ {
		offset := float64(i) * 0.01
		songs = append(songs, featured(int64(i+1), "Party", 0.85+offset, 0.8, 0.8, 0.1))
	}
	for i := 0; i < 5; i++ {
		offset := float64(i) * 0.01
		songs = append(songs, featured(int64(i+10), "Sad", 0.15+offset, 0.2, 0.2, 0.8))
	}

	groups, ungrouped := Detect(songs, Config{NumClusters: 2, MinGroupSize: 3})
	if len(ungrouped) != 0 {
		t.Fatalf("got %d ungrouped songs, want 0", len(ungrouped))
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}

	moods := map[string]int{}
	for _, g := range groups {
		moods[g.Mood] = len(g.Songs)
	}
	if moods["Upbeat Party"] != 5 {
		t.Errorf("Upbeat Party group has %d songs, want 5 (groups: %v)", moods["Upbeat Party"], moods)
	}
	if moods["Reflective & Melancholy (Acoustic)"] != 5 {
		t.Errorf("acoustic melancholy group has %d songs, want 5 (groups: %v)", moods["Reflective & Melancholy (Acoustic)"], moods)
	}
}

func TestDetectSmallGroupsBecomeUngrouped(t *testing.T) {
	var songs []Song
	for i := 0; i < 6; i++ {
		offset := float64(i) * 0.01
		songs = append(songs, featured(int64(i+1), "Party", 0.85+offset, 0.8, 0.8, 0.1))
	}
	// A lone distant song forms its own undersized cluster.
	songs = append(songs, featured(99, "Loner", 0.1, 0.1, 0.1, 0.9))

	groups, ungrouped := Detect(songs, Config{NumClusters: 2, MinGroupSize: 3})
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if len(ungrouped) != 1 || ungrouped[0].ID != 99 {
		t.Fatalf("ungrouped = %v, want just the loner", ungrouped)
	}
}

func TestGroupSummary(t *testing.T) {
	g := Group{Mood: "Upbeat Party", Songs: make([]Song, 12)}
	if got := g.Summary(); got != "Upbeat Party (12 songs)" {
		t.Errorf("Summary() = %q", got)
	}
}
