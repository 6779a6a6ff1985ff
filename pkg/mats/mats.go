// Package mats expands compact mat-numbering specifications such as
// "1-10,12,15-20" into concrete mat numbers.
package mats

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/shelterbeds/matcheckin/pkg/errors"
)

// MaxMatNumber bounds a single mat number so a typo like "1-1000000"
// cannot produce an unbounded night layout.
const MaxMatNumber = 10000

// Feature markers, concatenated in this order
const (
	MarkerHandicap = "H"
	MarkerSocket   = "S"
	MarkerWork     = "W"
)

// Expand parses spec and returns its mat numbers, ascending and deduplicated
func Expand(spec string) ([]int, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, apperrors.NewBadRequestError("mat specification is empty")
	}

	seen := make(map[int]struct{})
	for _, raw := range strings.Split(spec, ",") {
		token := strings.TrimSpace(raw)
		low, high, err := parseToken(token)
		if err != nil {
			return nil, err
		}
		for n := low; n <= high; n++ {
			seen[n] = struct{}{}
		}
	}

	out := make([]int, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Ints(out)
	return out, nil
}

// ExpandOptional is Expand, except an empty spec yields no mats
func ExpandOptional(spec string) ([]int, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}
	return Expand(spec)
}

func parseToken(token string) (int, int, error) {
	if token == "" {
		return 0, 0, apperrors.NewBadRequestError("mat specification contains an empty entry")
	}

	lowStr, highStr, isRange := strings.Cut(token, "-")
	low, err := parseMat(lowStr, token)
	if err != nil {
		return 0, 0, err
	}
	if !isRange {
		return low, low, nil
	}

	high, err := parseMat(highStr, token)
	if err != nil {
		return 0, 0, err
	}
	if low > high {
		return 0, 0, apperrors.NewBadRequestError(fmt.Sprintf("mat range %q is reversed", token))
	}
	return low, high, nil
}

func parseMat(s, token string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s[0] < '0' || s[0] > '9' {
		return 0, apperrors.NewBadRequestError(fmt.Sprintf("invalid mat entry %q", token))
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperrors.NewBadRequestError(fmt.Sprintf("invalid mat entry %q", token))
	}
	if n < 1 {
		return 0, apperrors.NewBadRequestError(fmt.Sprintf("mat numbers must be positive in %q", token))
	}
	if n > MaxMatNumber {
		return 0, apperrors.NewBadRequestError(fmt.Sprintf("mat number in %q exceeds %d", token, MaxMatNumber))
	}
	return n, nil
}

// Canonicalize renders mats in the compact form Expand accepts, collapsing
// consecutive runs into ranges. Input order and duplicates do not matter.
func Canonicalize(mats []int) string {
	if len(mats) == 0 {
		return ""
	}
	sorted := append([]int(nil), mats...)
	sort.Ints(sorted)

	var parts []string
	start, prev := sorted[0], sorted[0]
	flush := func() {
		if start == prev {
			parts = append(parts, strconv.Itoa(start))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", start, prev))
		}
	}
	for _, n := range sorted[1:] {
		if n == prev || n == prev+1 {
			prev = n
			continue
		}
		flush()
		start, prev = n, n
	}
	flush()
	return strings.Join(parts, ",")
}

// Subset checks that every mat in child also appears in parent.
// An empty child is always a subset.
func Subset(parent, child string) error {
	parentMats, err := Expand(parent)
	if err != nil {
		return err
	}
	childMats, err := ExpandOptional(child)
	if err != nil {
		return err
	}
	if missing := difference(childMats, parentMats); len(missing) > 0 {
		return apperrors.NewBadRequestError(fmt.Sprintf("mats %s are not in %q", Canonicalize(missing), parent))
	}
	return nil
}

func difference(a, b []int) []int {
	in := make(map[int]struct{}, len(b))
	for _, n := range b {
		in[n] = struct{}{}
	}
	var out []int
	for _, n := range a {
		if _, ok := in[n]; !ok {
			out = append(out, n)
		}
	}
	return out
}

// Layout is an expanded night layout: every mat with its feature tag
type Layout struct {
	Mats     []int
	Features map[int]string
}

// Features expands all and tags each mat by membership in the handicap,
// socket and work lists, which must each be subsets of all.
func Features(all, handicap, socket, work string) (*Layout, error) {
	allMats, err := Expand(all)
	if err != nil {
		return nil, err
	}

	marked := []struct {
		marker string
		spec   string
	}{
		{MarkerHandicap, handicap},
		{MarkerSocket, socket},
		{MarkerWork, work},
	}

	sets := make([]map[int]struct{}, len(marked))
	for i, m := range marked {
		list, err := ExpandOptional(m.spec)
		if err != nil {
			return nil, err
		}
		if missing := difference(list, allMats); len(missing) > 0 {
			return nil, apperrors.NewBadRequestError(fmt.Sprintf("mats %s are not in %q", Canonicalize(missing), all))
		}
		sets[i] = make(map[int]struct{}, len(list))
		for _, n := range list {
			sets[i][n] = struct{}{}
		}
	}

	layout := &Layout{Mats: allMats, Features: make(map[int]string, len(allMats))}
	for _, n := range allMats {
		var tag strings.Builder
		for i, m := range marked {
			if _, ok := sets[i][n]; ok {
				tag.WriteString(m.marker)
			}
		}
		layout.Features[n] = tag.String()
	}
	return layout, nil
}
