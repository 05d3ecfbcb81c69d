package kv

import (
	"strings"

	"github.com/versemark/versemark-server/internal/domain"
)

const (
	assignmentPrefix       = "assignment:"
	highlightPrefix        = "highlight:"
	highlightByColorPrefix = "idx:highlights:color:"
	highlightByRefPrefix   = "idx:highlights:ref:"
	versePrefix            = "verse:"
)

func assignmentKey(color string) []byte {
	return []byte(assignmentPrefix + color)
}

func highlightKey(id string) []byte {
	return []byte(highlightPrefix + id)
}

func colorIndexPrefix(color string) []byte {
	return []byte(highlightByColorPrefix + color + ":")
}

func colorIndexKey(color, id string) []byte {
	return []byte(highlightByColorPrefix + color + ":" + id)
}

func refIndexKey(ref domain.VerseRef) []byte {
	return []byte(highlightByRefPrefix + ref.Key())
}

func verseKey(ref domain.VerseRef) []byte {
	return []byte(versePrefix + ref.Key())
}

// parseColorIndexKey splits idx:highlights:color:{color}:{id}.
func parseColorIndexKey(key []byte) (color, id string, ok bool) {
	rest, found := strings.CutPrefix(string(key), highlightByColorPrefix)
	if !found {
		return "", "", false
	}
	i := strings.LastIndexByte(rest, ':')
	if i <= 0 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}
