package parse

import (
	"fmt"
	"strconv"
	"strings"
)

// Ref is an indirect object reference
type Ref struct {
	Num int
	Gen int
}

// String formats the reference as "N G R"
func (r Ref) String() string {
	return fmt.Sprintf("%d %d R", r.Num, r.Gen)
}

// IsZero reports whether r is unset
func (r Ref) IsZero() bool {
	return r.Num == 0
}

// ParseRef parses a reference like "5 0 R"
func ParseRef(s string) (Ref, bool) {
	parts := strings.Fields(s)
	if len(parts) != 3 || parts[2] != "R" {
		return Ref{}, false
	}
	num, err1 := strconv.Atoi(parts[0])
	gen, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || num <= 0 {
		return Ref{}, false
	}
	return Ref{Num: num, Gen: gen}, true
}

// dictEntry is one key/value pair of a dictionary, with byte spans into the source text
type dictEntry struct {
	Key        string
	Value      string
	KeyStart   int
	ValueStart int
	ValueEnd   int
}

// dictEntries parses the top-level entries of a dictionary.
// It returns the entries and the offset of the closing ">>".
func dictEntries(dict string) ([]dictEntry, int, error) {
	i := skipSpace(dict, 0)
	if !strings.HasPrefix(dict[i:], "<<") {
		return nil, 0, fmt.Errorf("not a dictionary")
	}
	i += 2

	var entries []dictEntry
	for {
		i = skipSpace(dict, i)
		if i >= len(dict) {
			return nil, 0, errUnexpectedEnd
		}
		if strings.HasPrefix(dict[i:], ">>") {
			return entries, i, nil
		}
		if dict[i] != '/' {
			return nil, 0, fmt.Errorf("expected name at offset %d", i)
		}

		keyStart := i
		keyEnd := scanToken(dict, i+1)
		valueStart := skipSpace(dict, keyEnd)
		valueEnd, err := scanValue(dict, valueStart)
		if err != nil {
			return nil, 0, fmt.Errorf("value of %s: %w", dict[keyStart:keyEnd], err)
		}

		entries = append(entries, dictEntry{
			Key:        dict[keyStart:keyEnd],
			Value:      dict[valueStart:valueEnd],
			KeyStart:   keyStart,
			ValueStart: valueStart,
			ValueEnd:   valueEnd,
		})
		i = valueEnd
	}
}

func normalizeKey(key string) string {
	if !strings.HasPrefix(key, "/") {
		return "/" + key
	}
	return key
}

// IsDict reports whether s holds a dictionary
func IsDict(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "<<")
}

// DictValue returns the raw value stored under key, or "" when absent.
// Nested dictionaries, arrays and strings are returned whole.
func DictValue(dict, key string) string {
	entries, _, err := dictEntries(dict)
	if err != nil {
		return ""
	}
	key = normalizeKey(key)
	for _, e := range entries {
		if e.Key == key {
			return e.Value
		}
	}
	return ""
}

// DictKeys returns the keys of a dictionary in source order
func DictKeys(dict string) []string {
	entries, _, err := dictEntries(dict)
	if err != nil {
		return nil
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	return keys
}

// SetDictValue sets or replaces key in dict, preserving the rest of the text
func SetDictValue(dict, key, value string) (string, error) {
	entries, closing, err := dictEntries(dict)
	if err != nil {
		return "", err
	}
	key = normalizeKey(key)
	for _, e := range entries {
		if e.Key == key {
			return dict[:e.ValueStart] + value + dict[e.ValueEnd:], nil
		}
	}
	return dict[:closing] + key + " " + value + dict[closing:], nil
}

// RemoveDictKey deletes key from dict if present
func RemoveDictKey(dict, key string) (string, error) {
	entries, _, err := dictEntries(dict)
	if err != nil {
		return "", err
	}
	key = normalizeKey(key)
	for _, e := range entries {
		if e.Key == key {
			return dict[:e.KeyStart] + dict[e.ValueEnd:], nil
		}
	}
	return dict, nil
}

// ArrayItems splits an array into its raw element values
func ArrayItems(arr string) ([]string, error) {
	i := skipSpace(arr, 0)
	if i >= len(arr) || arr[i] != '[' {
		return nil, fmt.Errorf("not an array")
	}
	i++

	var items []string
	for {
		i = skipSpace(arr, i)
		if i >= len(arr) {
			return nil, errUnexpectedEnd
		}
		if arr[i] == ']' {
			return items, nil
		}
		end, err := scanValue(arr, i)
		if err != nil {
			return nil, err
		}
		items = append(items, arr[i:end])
		i = end
	}
}

// ParseRefArray parses an array of references like "[5 0 R 6 0 R]".
// A bare reference is returned as a single-element slice.
func ParseRefArray(arr string) []Ref {
	if ref, ok := ParseRef(arr); ok {
		return []Ref{ref}
	}

	items, err := ArrayItems(arr)
	if err != nil {
		return nil
	}
	var refs []Ref
	for _, item := range items {
		if ref, ok := ParseRef(item); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

// ParseNumbers parses an array of numbers like "[0 0 612 792]"
func ParseNumbers(arr string) ([]float64, error) {
	items, err := ArrayItems(arr)
	if err != nil {
		return nil, err
	}
	nums := make([]float64, 0, len(items))
	for _, item := range items {
		n, err := strconv.ParseFloat(item, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", item)
		}
		nums = append(nums, n)
	}
	return nums, nil
}

// ParseInt parses an integer value, tolerating a trailing ".0"
func ParseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}
