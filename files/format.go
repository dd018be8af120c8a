package files

import (
	"fmt"
	"os"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Filename templates name their date and version fields with python-style
// placeholders, e.g. "inst_{year:04d}{month:02d}{day:02d}_v{version:02d}.cdf".
// The '?' character marks a variable part of the name that is matched but
// never extracted.

// Template field names, in the order they are reported by Parsed.
const (
	FieldYear     = "year"
	FieldMonth    = "month"
	FieldDay      = "day"
	FieldHour     = "hour"
	FieldMinute   = "minute"
	FieldSecond   = "second"
	FieldVersion  = "version"
	FieldRevision = "revision"
	FieldCycle    = "cycle"
)

var fieldPattern = regexp.MustCompile(
	`\{(year|month|day|hour|minute|second|version|revision|cycle)(?::0?(\d+)d)?\}`)

type segment struct {
	literal string // used when field is empty
	field   string
	width   int // 0 means unbounded (delimited parsing only)
}

// parseTemplate splits a format string into literal and field segments.
func parseTemplate(formatStr string) ([]segment, error) {
	if formatStr == "" {
		return nil, fmt.Errorf("empty file format string")
	}

	var segs []segment
	last := 0
	for _, loc := range fieldPattern.FindAllStringSubmatchIndex(formatStr, -1) {
		if loc[0] > last {
			segs = append(segs, segment{literal: formatStr[last:loc[0]]})
		}
		name := formatStr[loc[2]:loc[3]]
		width := 0
		if loc[4] >= 0 {
			w, err := strconv.Atoi(formatStr[loc[4]:loc[5]])
			if err != nil {
				return nil, fmt.Errorf("bad width in format %q: %w", formatStr, err)
			}
			width = w
		}
		segs = append(segs, segment{field: name, width: width})
		last = loc[1]
	}
	if last < len(formatStr) {
		segs = append(segs, segment{literal: formatStr[last:]})
	}
	if strings.Contains(formatStr[strings.LastIndex(formatStr, "}")+1:], "{") {
		return nil, fmt.Errorf("unbalanced braces in format %q", formatStr)
	}
	return segs, nil
}

// SearchInfo describes the search string derived from a filename template.
type SearchInfo struct {
	SearchString string
	Keys         []string
	Lengths      []int
}

// ConstructSearchString converts a filename template into a glob-style
// search string, replacing each field with '?' repeated to its width. When
// wildcard is true, fields become '*' instead, which suits delimited
// filenames whose fields have no fixed width.
func ConstructSearchString(formatStr string, wildcard bool) (SearchInfo, error) {
	segs, err := parseTemplate(formatStr)
	if err != nil {
		return SearchInfo{}, err
	}

	var b strings.Builder
	info := SearchInfo{}
	for _, s := range segs {
		if s.field == "" {
			b.WriteString(s.literal)
			continue
		}
		info.Keys = append(info.Keys, s.field)
		info.Lengths = append(info.Lengths, s.width)
		if wildcard || s.width == 0 {
			b.WriteByte('*')
		} else {
			b.WriteString(strings.Repeat("?", s.width))
		}
	}
	info.SearchString = b.String()
	return info, nil
}

// Search lists the files directly under dataPath whose names match the
// search string ('?' matches one character, '*' any run). The result is
// sorted by name.
func Search(dataPath, searchStr string) ([]string, error) {
	entries, err := os.ReadDir(dataPath)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", dataPath, err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ok, err := path.Match(searchStr, e.Name())
		if err != nil {
			return nil, fmt.Errorf("bad search string %q: %w", searchStr, err)
		}
		if ok {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// Parsed holds the values extracted from a set of filenames. Fields absent
// from the template are nil. All present fields have one entry per file.
type Parsed struct {
	Files     []string
	Years     []int
	Months    []int
	Days      []int
	Hours     []int
	Minutes   []int
	Seconds   []int
	Versions  []int
	Revisions []int
	Cycles    []int
}

func (p *Parsed) slot(field string) *[]int {
	switch field {
	case FieldYear:
		return &p.Years
	case FieldMonth:
		return &p.Months
	case FieldDay:
		return &p.Days
	case FieldHour:
		return &p.Hours
	case FieldMinute:
		return &p.Minutes
	case FieldSecond:
		return &p.Seconds
	case FieldVersion:
		return &p.Versions
	case FieldRevision:
		return &p.Revisions
	case FieldCycle:
		return &p.Cycles
	}
	return nil
}

// templateRegexp compiles the segments into an extraction regexp. Fixed
// widths become exact-length digit groups; width zero becomes a greedy
// digit run, usable only when a delimiter bounds the field.
func templateRegexp(segs []segment, requireWidth bool) (*regexp.Regexp, []string, error) {
	var b strings.Builder
	b.WriteString(`\A`)
	var keys []string
	for _, s := range segs {
		if s.field == "" {
			for _, r := range s.literal {
				if r == '?' {
					b.WriteByte('.')
				} else {
					b.WriteString(regexp.QuoteMeta(string(r)))
				}
			}
			continue
		}
		keys = append(keys, s.field)
		if s.width > 0 {
			fmt.Fprintf(&b, `(\d{%d})`, s.width)
		} else if requireWidth {
			return nil, nil, fmt.Errorf("field %q needs an explicit width for fixed-width parsing", s.field)
		} else {
			b.WriteString(`(\d+)`)
		}
	}
	b.WriteString(`\z`)
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, nil, err
	}
	return re, keys, nil
}

func parseFilenames(fnames []string, segs []segment, requireWidth bool) (*Parsed, error) {
	re, keys, err := templateRegexp(segs, requireWidth)
	if err != nil {
		return nil, err
	}

	parsed := &Parsed{}
	for _, fname := range fnames {
		m := re.FindStringSubmatch(fname)
		if m == nil {
			// Non-matching names were let through by the wildcard search,
			// skip them rather than failing the whole listing.
			continue
		}
		parsed.Files = append(parsed.Files, fname)
		for i, key := range keys {
			v, err := strconv.Atoi(m[i+1])
			if err != nil {
				return nil, fmt.Errorf("parse %s from %q: %w", key, fname, err)
			}
			*parsed.slot(key) = append(*parsed.slot(key), v)
		}
	}
	return parsed, nil
}

// ParseFixedWidth extracts template fields from filenames whose fields all
// occupy fixed-width positions.
func ParseFixedWidth(fnames []string, formatStr string) (*Parsed, error) {
	segs, err := parseTemplate(formatStr)
	if err != nil {
		return nil, err
	}
	return parseFilenames(fnames, segs, true)
}

// ParseDelimited extracts template fields from delimited filenames. The
// delimiter bounds variable-width fields, so widths are optional.
func ParseDelimited(fnames []string, formatStr, delimiter string) (*Parsed, error) {
	if delimiter == "" {
		return nil, fmt.Errorf("empty delimiter")
	}
	segs, err := parseTemplate(formatStr)
	if err != nil {
		return nil, err
	}
	return parseFilenames(fnames, segs, false)
}

// ProcessParsed orders the parsed filenames by their file start time. When
// several files share a time, the one with the highest version wins, then
// revision, then cycle. twoDigitYearBreak maps two-digit years into the
// 1900s at or above the break and the 2000s below it; pass a negative
// value when years are already four digits.
func ProcessParsed(p *Parsed, twoDigitYearBreak int) (*List, error) {
	if p == nil || len(p.Files) == 0 {
		return &List{}, nil
	}
	if p.Years == nil {
		return nil, fmt.Errorf("filename template must include a year field")
	}

	type candidate struct {
		when     time.Time
		name     string
		version  int
		revision int
		cycle    int
	}

	get := func(vals []int, i int, def int) int {
		if vals == nil {
			return def
		}
		return vals[i]
	}

	best := make(map[int64]candidate)
	var order []int64
	for i, name := range p.Files {
		year := p.Years[i]
		if twoDigitYearBreak >= 0 && year < 100 {
			if year >= twoDigitYearBreak {
				year += 1900
			} else {
				year += 2000
			}
		}
		month := get(p.Months, i, 1)
		day := get(p.Days, i, 1)
		when := time.Date(year, time.Month(month), day,
			get(p.Hours, i, 0), get(p.Minutes, i, 0), get(p.Seconds, i, 0),
			0, time.UTC)

		c := candidate{
			when:     when,
			name:     name,
			version:  get(p.Versions, i, 0),
			revision: get(p.Revisions, i, 0),
			cycle:    get(p.Cycles, i, 0),
		}
		key := when.UnixNano()
		prev, seen := best[key]
		if !seen {
			best[key] = c
			order = append(order, key)
			continue
		}
		if c.version > prev.version ||
			(c.version == prev.version && c.revision > prev.revision) ||
			(c.version == prev.version && c.revision == prev.revision && c.cycle > prev.cycle) {
			best[key] = c
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	list := &List{}
	for _, key := range order {
		c := best[key]
		list.Times = append(list.Times, c.when)
		list.Names = append(list.Names, c.name)
	}
	return list, nil
}

// FromOS lists the files under dataPath matching the template and returns
// them ordered by file start time, ready to back a Files index. When
// delimiter is empty the template is treated as fixed width.
func FromOS(dataPath, formatStr string, twoDigitYearBreak int, delimiter string) (*List, error) {
	if dataPath == "" {
		return nil, fmt.Errorf("must supply instrument directory path")
	}

	info, err := ConstructSearchString(formatStr, delimiter != "")
	if err != nil {
		return nil, err
	}
	found, err := Search(dataPath, info.SearchString)
	if err != nil {
		return nil, err
	}

	var parsed *Parsed
	if delimiter == "" {
		parsed, err = ParseFixedWidth(found, formatStr)
	} else {
		parsed, err = ParseDelimited(found, formatStr, delimiter)
	}
	if err != nil {
		return nil, err
	}
	return ProcessParsed(parsed, twoDigitYearBreak)
}
