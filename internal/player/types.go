package player

// Availability is the coarse time window a player is usually free to play.
type Availability string

const (
	AvailabilityWeekdays Availability = "weekdays"
	AvailabilityWeekends Availability = "weekends"
	AvailabilityBoth     Availability = "both"
)

// Gender is used as a hard filter when building match pools.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderMixed  Gender = "mixed"
)

// MinSkill and MaxSkill bound the continuous skill scale used for matching.
const (
	MinSkill = 0.0
	MaxSkill = 7.0
)

// Player is the record the engine consumes. Identity fields never change here;
// SkillRating and EloRating only move through recorded results.
type Player struct {
	ID           string       `json:"id" msgpack:"id"`
	DisplayName  string       `json:"displayName" msgpack:"display_name"`
	Sport        string       `json:"sport" msgpack:"sport"`
	City         string       `json:"city" msgpack:"city"`
	Gender       Gender       `json:"gender" msgpack:"gender"`
	SkillRating  float64      `json:"skillRating" msgpack:"skill_rating"`
	EloRating    int          `json:"eloRating" msgpack:"elo_rating"`
	Availability Availability `json:"availability" msgpack:"availability"`
}

// Find returns the player with the given id from pool.
func Find(pool []Player, id string) (Player, bool) {
	for _, p := range pool {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// ValidSkill reports whether the skill rating lies on the 0–7 scale.
func ValidSkill(skill float64) bool {
	return skill >= MinSkill && skill <= MaxSkill
}
