package tourguide

import (
	"sync"
)

// =============================================================================
// USER - Mutable, owned by the user directory
// =============================================================================

// User is shared between the directory, the tracker and the reward engine.
// Visits are append-only. Rewards are append-only and hold at most one entry
// per attraction; the check and the append happen under rewardsMu.
type User struct {
	ID    UserID
	Name  string
	Phone string
	Email string

	mu          sync.RWMutex
	visits      []Visit
	preferences Preferences
	tripDeals   []Provider

	rewardsMu sync.RWMutex
	rewards   []Reward
	rewarded  map[AttractionID]struct{}
}

// NewUser creates a user with default preferences and no history.
func NewUser(id UserID, name, phone, email string) *User {
	return &User{
		ID:          id,
		Name:        name,
		Phone:       phone,
		Email:       email,
		preferences: DefaultPreferences(),
		rewarded:    make(map[AttractionID]struct{}),
	}
}

// AddVisit appends a visit to the user's history.
func (u *User) AddVisit(v Visit) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.visits = append(u.visits, v)
}

// Visits returns a point-in-time copy of the visit history, oldest first.
func (u *User) Visits() []Visit {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make([]Visit, len(u.visits))
	copy(out, u.visits)
	return out
}

// LastVisit returns the most recent visit, if any.
func (u *User) LastVisit() (Visit, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if len(u.visits) == 0 {
		return Visit{}, false
	}
	return u.visits[len(u.visits)-1], true
}

// Preferences returns the user's trip preferences.
func (u *User) Preferences() Preferences {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.preferences
}

// SetPreferences replaces the user's trip preferences.
func (u *User) SetPreferences(p Preferences) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.preferences = p
}

// TripDeals returns the most recently priced deals.
func (u *User) TripDeals() []Provider {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make([]Provider, len(u.tripDeals))
	copy(out, u.tripDeals)
	return out
}

// SetTripDeals replaces the cached trip deals.
func (u *User) SetTripDeals(deals []Provider) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.tripDeals = append([]Provider(nil), deals...)
}

// =============================================================================
// REWARDS
// =============================================================================

// AddReward appends r unless the user already holds a reward for the same
// attraction. Reports whether the reward was appended.
func (u *User) AddReward(r Reward) bool {
	u.rewardsMu.Lock()
	defer u.rewardsMu.Unlock()

	if _, ok := u.rewarded[r.Attraction.ID]; ok {
		return false
	}
	u.rewards = append(u.rewards, r)
	u.rewarded[r.Attraction.ID] = struct{}{}
	return true
}

// HasReward reports whether the attraction has already been rewarded.
func (u *User) HasReward(id AttractionID) bool {
	u.rewardsMu.RLock()
	defer u.rewardsMu.RUnlock()
	_, ok := u.rewarded[id]
	return ok
}

// RewardedAttractions returns a copy of the set of rewarded attraction IDs.
func (u *User) RewardedAttractions() map[AttractionID]struct{} {
	u.rewardsMu.RLock()
	defer u.rewardsMu.RUnlock()
	out := make(map[AttractionID]struct{}, len(u.rewarded))
	for id := range u.rewarded {
		out[id] = struct{}{}
	}
	return out
}

// Rewards returns a copy of the user's rewards in the order they were granted.
func (u *User) Rewards() []Reward {
	u.rewardsMu.RLock()
	defer u.rewardsMu.RUnlock()
	out := make([]Reward, len(u.rewards))
	copy(out, u.rewards)
	return out
}

// TotalRewardPoints sums the points of every reward.
func (u *User) TotalRewardPoints() int {
	u.rewardsMu.RLock()
	defer u.rewardsMu.RUnlock()
	total := 0
	for _, r := range u.rewards {
		total += r.Points
	}
	return total
}
