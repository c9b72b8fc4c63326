package domain

import (
	"strconv"
	"strings"
)

// Priority is an integer level from 1 (lowest) to 5 (highest)
type Priority int

const (
	PriorityLowest  Priority = 1
	PriorityLow     Priority = 2
	PriorityMedium  Priority = 3
	PriorityHigh    Priority = 4
	PriorityHighest Priority = 5
)

var priorityLabels = map[Priority]string{
	PriorityLowest:  "Lowest",
	PriorityLow:     "Low",
	PriorityMedium:  "Medium",
	PriorityHigh:    "High",
	PriorityHighest: "Highest",
}

func (p Priority) Valid() bool {
	return p >= PriorityLowest && p <= PriorityHighest
}

func (p Priority) Label() string {
	if label, ok := priorityLabels[p]; ok {
		return label
	}
	return "Unknown"
}

// ParsePriority accepts the shapes priorities show up in: Go and Firestore
// numbers, numeric strings and labels such as "Medium".
func ParsePriority(v interface{}) (Priority, bool) {
	var p Priority
	switch val := v.(type) {
	case Priority:
		p = val
	case int:
		p = Priority(val)
	case int32:
		p = Priority(val)
	case int64:
		p = Priority(val)
	case float64:
		if val != float64(int64(val)) {
			return 0, false
		}
		p = Priority(val)
	case string:
		s := strings.TrimSpace(val)
		if n, err := strconv.Atoi(s); err == nil {
			p = Priority(n)
			break
		}
		for level, label := range priorityLabels {
			if strings.EqualFold(label, s) {
				return level, true
			}
		}
		return 0, false
	default:
		return 0, false
	}
	return p, p.Valid()
}
