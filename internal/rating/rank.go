package rating

type tier struct {
	below int
	label string
}

// ladder is ordered by ascending upper bound. Anything at or above the last bound is Grandmaster.
var ladder = []tier{
	{1200, "Beginner"},
	{1400, "Novice"},
	{1600, "Intermediate"},
	{1800, "Advanced"},
	{2000, "Expert"},
	{2200, "Master"},
}

// RankDescription maps an ELO rating to its tier label.
func RankDescription(r int) string {
	for _, t := range ladder {
		if r < t.below {
			return t.label
		}
	}
	return "Grandmaster"
}

// RankDescriptions labels every rating in the map.
func RankDescriptions(ratings map[string]int) map[string]string {
	ranks := make(map[string]string, len(ratings))
	for id, r := range ratings {
		ranks[id] = RankDescription(r)
	}
	return ranks
}
