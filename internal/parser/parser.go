// Package parser turns free-form experiment text into validated metrics.
//
// Input is a sequence of blocks. A line without any number token names a
// metric; each following data line holds a variant name and two counts,
// trials then successes:
//
//	Website conversion
//	Baseline 2,000 200
//	Treatment-1 2,000 220
//
// Blank lines are ignored. Fields may be tab separated, in which case a
// variant name may contain spaces. The first data line of a metric is its
// control.
package parser

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"abtest/domain/core"
	"abtest/domain/experiment"
)

const maxLineBytes = 1 << 20

var numberToken = regexp.MustCompile(`^[+-]?[0-9][0-9,]*(\.[0-9]+)?$`)

// Parse parses text into a MetricSet.
func Parse(text string) (*experiment.MetricSet, error) {
	return ParseReader(strings.NewReader(text))
}

// ParseReader parses line-oriented input from r. Parsing stops at the first
// malformed line.
func ParseReader(r io.Reader) (*experiment.MetricSet, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	b := NewBuilder()
	first := true
	for scanner.Scan() {
		raw := strings.TrimRight(scanner.Text(), "\r")
		if first {
			raw = strings.TrimPrefix(raw, "\ufeff")
			first = false
		}
		if err := parseLine(b, raw); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return b.Finish()
}

func parseLine(b *Builder, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	tokens := tokenize(raw)
	if !hasNumber(tokens) {
		return b.StartMetric(strings.Join(strings.Fields(raw), " "), raw)
	}

	if len(tokens) < 3 {
		return core.NewFormatError(raw, "expected <variant> <trials> <successes>")
	}

	name := strings.Join(strings.Fields(strings.Join(tokens[:len(tokens)-2], " ")), " ")
	trials, err := parseCount(tokens[len(tokens)-2])
	if err != nil {
		return core.NewFormatError(raw, "trials and successes must be integers")
	}
	successes, err := parseCount(tokens[len(tokens)-1])
	if err != nil {
		return core.NewFormatError(raw, "trials and successes must be integers")
	}

	return b.AddVariant(name, trials, successes, raw)
}

// tokenize splits on tabs when the line has any, otherwise on whitespace.
func tokenize(line string) []string {
	if !strings.Contains(line, "\t") {
		return strings.Fields(line)
	}
	var tokens []string
	for _, field := range strings.Split(line, "\t") {
		if field = strings.TrimSpace(field); field != "" {
			tokens = append(tokens, field)
		}
	}
	return tokens
}

func hasNumber(tokens []string) bool {
	for _, t := range tokens {
		if numberToken.MatchString(t) {
			return true
		}
	}
	return false
}

// ParseCount parses an integer count, accepting thousands separators.
func ParseCount(token string) (int64, error) {
	return parseCount(token)
}

func parseCount(token string) (int64, error) {
	return strconv.ParseInt(strings.ReplaceAll(strings.TrimSpace(token), ",", ""), 10, 64)
}
