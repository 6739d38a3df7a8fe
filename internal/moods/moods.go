// Package moods groups catalog songs by audio feature similarity using
// k-means clustering over energy, valence, danceability and acousticness.
package moods

import (
	"fmt"
	"slices"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// Config holds clustering parameters.
type Config struct {
	NumClusters  int // number of mood groups to form (default: 3)
	MinGroupSize int // smaller groups are folded into ungrouped
}

// DefaultConfig returns the recommended default configuration.
func DefaultConfig() Config {
	return Config{
		NumClusters:  3,
		MinGroupSize: 3,
	}
}

// Song carries the subset of song data clustering needs. Feature fields are
// nil when external enrichment did not provide them.
type Song struct {
	ID           int64
	Title        string
	Artist       string
	Energy       *float64
	Valence      *float64
	Danceability *float64
	Acousticness *float64
}

// Group is a set of songs sharing a mood.
type Group struct {
	Mood        string
	Description string
	Centroid    map[string]float64
	Songs       []Song
}

// songObservation wraps a Song to satisfy clusters.Observation.
type songObservation struct {
	song   *Song
	coords clusters.Coordinates
}

func (o songObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o songObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// featureNames defines the audio features used for clustering, in coordinate
// order.
var featureNames = []string{"energy", "valence", "danceability", "acousticness"}

// Detect partitions songs into mood groups. Songs missing any clustering
// feature, and members of groups below MinGroupSize, come back in the second
// return value. Groups are ordered largest first.
func Detect(songs []Song, cfg Config) ([]Group, []Song) {
	if len(songs) == 0 {
		return nil, nil
	}

	if cfg.NumClusters <= 0 {
		cfg.NumClusters = DefaultConfig().NumClusters
	}

	var valid []*Song
	var ungrouped []Song
	for i := range songs {
		s := &songs[i]
		if hasFeatures(s) {
			valid = append(valid, s)
		} else {
			ungrouped = append(ungrouped, *s)
		}
	}

	// Not enough featured songs to form the requested clusters.
	if len(valid) < cfg.NumClusters {
		for _, s := range valid {
			ungrouped = append(ungrouped, *s)
		}
		return nil, ungrouped
	}

	var obs clusters.Observations
	for _, s := range valid {
		obs = append(obs, songObservation{song: s, coords: coordinates(s)})
	}

	km := kmeans.New()
	result, err := km.Partition(obs, cfg.NumClusters)
	if err != nil {
		for _, s := range valid {
			ungrouped = append(ungrouped, *s)
		}
		return nil, ungrouped
	}

	var groups []Group
	for _, cluster := range result {
		var members []Song
		for _, o := range cluster.Observations {
			if so, ok := o.(songObservation); ok {
				members = append(members, *so.song)
			}
		}

		if len(members) < cfg.MinGroupSize {
			ungrouped = append(ungrouped, members...)
			continue
		}

		slices.SortFunc(members, func(a, b Song) int {
			return int(a.ID - b.ID)
		})

		centroid := make(map[string]float64, len(featureNames))
		for i, name := range featureNames {
			centroid[name] = cluster.Center[i]
		}

		groups = append(groups, Group{
			Mood:        moodName(centroid),
			Description: moodDescription(centroid),
			Centroid:    centroid,
			Songs:       members,
		})
	}

	slices.SortFunc(groups, func(a, b Group) int {
		return len(b.Songs) - len(a.Songs)
	})

	return groups, ungrouped
}

func hasFeatures(s *Song) bool {
	return s.Energy != nil &&
		s.Valence != nil &&
		s.Danceability != nil &&
		s.Acousticness != nil
}

func coordinates(s *Song) clusters.Coordinates {
	return clusters.Coordinates{
		*s.Energy,
		*s.Valence,
		*s.Danceability,
		*s.Acousticness,
	}
}

// moodName names a centroid using a 2x2 energy/valence quadrant with an
// acousticness modifier.
//
//   - High Energy + High Valence = "Upbeat Party"
//   - High Energy + Low Valence  = "Intense & Dark"
//   - Low Energy  + High Valence = "Chill & Happy"
//   - Low Energy  + Low Valence  = "Reflective & Melancholy"
func moodName(centroid map[string]float64) string {
	highEnergy := centroid["energy"] > 0.6
	highValence := centroid["valence"] > 0.5

	var name string
	switch {
	case highEnergy && highValence:
		name = "Upbeat Party"
	case highEnergy && !highValence:
		name = "Intense & Dark"
	case !highEnergy && highValence:
		name = "Chill & Happy"
	default:
		name = "Reflective & Melancholy"
	}

	if centroid["acousticness"] > 0.6 {
		return name + " (Acoustic)"
	}
	return name
}

func moodDescription(centroid map[string]float64) string {
	highEnergy := centroid["energy"] > 0.6
	highValence := centroid["valence"] > 0.5

	switch {
	case highEnergy && highValence:
		return "High-energy, positive vibes, good for dancing and celebrations"
	case highEnergy && !highValence:
		return "Intense, driving energy with darker emotional tones"
	case !highEnergy && highValence:
		return "Relaxed and uplifting, great for unwinding"
	default:
		return "Contemplative and introspective, ideal for quiet moments"
	}
}

// Summary renders a short label like "Upbeat Party (12 songs)".
func (g *Group) Summary() string {
	return fmt.Sprintf("%s (%d songs)", g.Mood, len(g.Songs))
}
