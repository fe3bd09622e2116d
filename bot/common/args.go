package common

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// ParseUserID extracts a snowflake from a mention (<@id>, <@!id>) or a raw ID
func ParseUserID(arg string) (string, bool) {
	id := arg
	if strings.HasPrefix(id, "<@") && strings.HasSuffix(id, ">") {
		id = strings.TrimPrefix(id[2:len(id)-1], "!")
	}
	if id == "" {
		return "", false
	}
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return "", false
	}
	return id, true
}

// ResolveMember converts the argument to a guild member. Mentions and IDs
// are looked up directly; anything else is matched against cached members
// by name#discriminator, username, global name or nickname.
func (c *Context) ResolveMember(name, arg string) (*discordgo.Member, error) {
	notFound := InvalidArgument(name, fmt.Sprintf("Member \"%s\" not found.", arg))
	if c.Members == nil {
		return nil, notFound
	}

	if userID, ok := ParseUserID(arg); ok {
		member, err := c.Members.Member(c.GuildID, userID)
		if err != nil || member == nil || member.User == nil {
			return nil, notFound
		}
		return member, nil
	}

	members, err := c.Members.GuildMembers(c.GuildID)
	if err != nil {
		return nil, notFound
	}
	if member := FindMember(members, arg); member != nil {
		return member, nil
	}
	return nil, notFound
}

// FindMember matches a query against member names. Exact matches win over
// case-insensitive ones.
func FindMember(members []*discordgo.Member, query string) *discordgo.Member {
	if query == "" {
		return nil
	}

	if username, discriminator, ok := splitDiscriminator(query); ok {
		for _, member := range members {
			if member != nil && member.User != nil &&
				member.User.Username == username && member.User.Discriminator == discriminator {
				return member
			}
		}
	}

	equal := func(a, b string) bool { return a == b }
	for _, match := range []func(a, b string) bool{equal, strings.EqualFold} {
		for _, member := range members {
			if member == nil || member.User == nil {
				continue
			}
			user := member.User
			if match(user.Username, query) ||
				(user.GlobalName != "" && match(user.GlobalName, query)) ||
				(member.Nick != "" && match(member.Nick, query)) {
				return member
			}
		}
	}
	return nil
}

// splitDiscriminator splits "name#1234" into its parts
func splitDiscriminator(query string) (string, string, bool) {
	idx := strings.LastIndex(query, "#")
	if idx <= 0 || len(query)-idx-1 != 4 {
		return "", "", false
	}
	discriminator := query[idx+1:]
	if _, err := strconv.Atoi(discriminator); err != nil {
		return "", "", false
	}
	return query[:idx], discriminator, true
}

// DisplayName returns the member's nickname, global name or username
func DisplayName(member *discordgo.Member, user *discordgo.User) string {
	if member != nil {
		if member.Nick != "" {
			return member.Nick
		}
		if user == nil {
			user = member.User
		}
	}
	if user == nil {
		return ""
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}
