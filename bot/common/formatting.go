package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatBalance formats a balance amount with thousand separators
func FormatBalance(balance int64) string {
	str := strconv.FormatInt(balance, 10)

	sign := ""
	if strings.HasPrefix(str, "-") {
		sign, str = "-", str[1:]
	}

	n := len(str)
	if n <= 3 {
		return sign + str
	}

	var result strings.Builder
	result.WriteString(sign)
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// FormatMoney renders an amount as "$N"
func FormatMoney(amount int64) string {
	return fmt.Sprintf("$%d", amount)
}

// FormatCooldown renders a retry delay as "Xm Ys", "Xm" or "Ys".
// Fractions of a second are dropped.
func FormatCooldown(retryAfter time.Duration) string {
	total := int64(retryAfter / time.Second)
	minutes, seconds := total/60, total%60

	switch {
	case minutes > 0 && seconds > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// FormatPrefixes describes the prefixes in effect for a guild
func FormatPrefixes(prefixes []string) string {
	if len(prefixes) == 1 {
		return fmt.Sprintf("The current prefix is `%s`", prefixes[0])
	}

	quoted := make([]string, len(prefixes))
	for i, prefix := range prefixes {
		quoted[i] = "`" + prefix + "`"
	}
	return "The current prefixes are: " + strings.Join(quoted, ", ")
}

// UserMention formats a Discord user mention
func UserMention(userID string) string {
	return "<@" + userID + ">"
}
