package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// apiLevels maps platform codenames to API levels
var apiLevels = map[string]int{
	"G":               9,
	"I":               14,
	"J":               16,
	"J-MR1":           17,
	"J-MR2":           18,
	"K":               19,
	"L":               21,
	"L-MR1":           22,
	"M":               23,
	"N":               24,
	"N-MR1":           25,
	"O":               26,
	"O-MR1":           27,
	"P":               28,
	"Q":               29,
	"R":               30,
	"S":               31,
	"Sv2":             32,
	"Tiramisu":        33,
	"UpsideDownCake":  34,
	"VanillaIceCream": 35,
	"Baklava":         36,
}

// APILevel pairs a platform codename with its numeric level
type APILevel struct {
	Codename string
	Level    int
}

// APILevels returns the codename table ordered by level
func APILevels() []APILevel {
	levels := make([]APILevel, 0, len(apiLevels))
	for name, level := range apiLevels {
		levels = append(levels, APILevel{Codename: name, Level: level})
	}
	sort.Slice(levels, func(i, j int) bool {
		return levels[i].Level < levels[j].Level
	})
	return levels
}

// ParseAPILevel parses a numeric API level or a platform codename
func ParseAPILevel(s string) (int, error) {
	v := strings.TrimSpace(s)
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	if n, ok := apiLevels[v]; ok {
		return n, nil
	}
	return 0, fmt.Errorf("%q is neither an API level nor a known codename", s)
}
