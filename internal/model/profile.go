package model

import "slices"

// DefaultHammer is the item every profile starts with
const DefaultHammer = "default"

// Profile is a player's persistent game state
type Profile struct {
	Username             string   `json:"username"`
	Coins                int64    `json:"coins"`
	UnlockedHammers      []string `json:"unlocked_hammers"`
	EquippedHammer       string   `json:"equipped_hammer"`
	UnlockedAchievements []string `json:"unlocked_achievements"`
}

// NewProfile returns a profile with default game state
func NewProfile(username string) *Profile {
	return &Profile{
		Username:             username,
		Coins:                0,
		UnlockedHammers:      []string{DefaultHammer},
		EquippedHammer:       DefaultHammer,
		UnlockedAchievements: []string{},
	}
}

// ProfileSync is the client-supplied replacement for a profile's game state
type ProfileSync struct {
	Coins                int64
	UnlockedHammers      []string
	EquippedHammer       string
	UnlockedAchievements []string
}

// Normalize fills defaults and removes duplicate set members
func (s ProfileSync) Normalize() ProfileSync {
	out := ProfileSync{
		Coins:                s.Coins,
		UnlockedHammers:      dedupe(s.UnlockedHammers),
		EquippedHammer:       s.EquippedHammer,
		UnlockedAchievements: dedupe(s.UnlockedAchievements),
	}
	if len(out.UnlockedHammers) == 0 {
		out.UnlockedHammers = []string{DefaultHammer}
	}
	if out.EquippedHammer == "" {
		out.EquippedHammer = DefaultHammer
	}
	return out
}

// Apply replaces the profile's game state with the sync values
func (p *Profile) Apply(s ProfileSync) {
	p.Coins = s.Coins
	p.UnlockedHammers = slices.Clone(s.UnlockedHammers)
	p.EquippedHammer = s.EquippedHammer
	p.UnlockedAchievements = slices.Clone(s.UnlockedAchievements)
}

// Clone returns a deep copy of the profile
func (p *Profile) Clone() *Profile {
	c := *p
	c.UnlockedHammers = slices.Clone(p.UnlockedHammers)
	c.UnlockedAchievements = slices.Clone(p.UnlockedAchievements)
	return &c
}

func dedupe(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
