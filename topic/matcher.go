// Package topic implements MQTT-style wildcard matching between a
// concrete topic and a subscription pattern. Segments are delimited by
// '/'; '+' matches exactly one segment, '#' matches the remainder of the
// topic (zero or more trailing segments) and must be the final character
// of the pattern.
package topic

import (
	"errors"
	"strings"
)

// ErrInvalidPattern is returned by Validate (and implied by a false Match)
// when '#' appears anywhere but as the pattern's final character, or isn't
// at a segment boundary there.
var ErrInvalidPattern = errors.New("topic: invalid pattern")

// Validate reports whether pattern is well-formed: '#', if present, must
// be the pattern's last byte, and must start its own segment (preceded by
// '/' or by nothing at all).
func Validate(pattern string) error {
	idx := strings.IndexByte(pattern, '#')
	if idx == -1 {
		return nil
	}
	if idx != len(pattern)-1 {
		return ErrInvalidPattern
	}
	if idx > 0 && pattern[idx-1] != '/' {
		return ErrInvalidPattern
	}
	return nil
}

// Match reports whether the concrete topic matches pattern.
//
// Preconditions: topic must not contain '+' or '#' (a violation always
// yields false, it is never an error); pattern is validated with Validate
// first (an invalid pattern always yields false).
func Match(topicStr, pattern string) bool {
	if strings.ContainsAny(topicStr, "+#") {
		return false
	}
	if Validate(pattern) != nil {
		return false
	}

	topicSegs := strings.Split(topicStr, "/")
	patSegs := strings.Split(pattern, "/")

	i := 0
	for j := 0; j < len(patSegs); j++ {
		seg := patSegs[j]
		if seg == "#" {
			// Matches the remainder of the topic, including zero
			// trailing segments, regardless of how many are left.
			return true
		}
		if i >= len(topicSegs) {
			return false
		}
		if seg == "+" {
			i++
			continue
		}
		if seg != topicSegs[i] {
			return false
		}
		i++
	}
	return i == len(topicSegs)
}
