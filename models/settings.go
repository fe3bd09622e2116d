package models

// GuildSettings holds per-guild bot configuration
type GuildSettings struct {
	GuildID  int64    `db:"guild_id" json:"guild_id"`
	Prefixes []string `db:"prefixes" json:"prefixes"`
}

// SettingsUpdate is a partial update of guild settings.
// Nil fields are left unchanged.
type SettingsUpdate struct {
	Prefixes *[]string
}

// IsEmpty reports whether the update changes nothing
func (u SettingsUpdate) IsEmpty() bool {
	return u.Prefixes == nil
}

// EffectivePrefixes returns the guild prefixes, or the fallback when none are set
func (s *GuildSettings) EffectivePrefixes(fallback string) []string {
	if s == nil || len(s.Prefixes) == 0 {
		return []string{fallback}
	}
	out := make([]string, len(s.Prefixes))
	copy(out, s.Prefixes)
	return out
}
