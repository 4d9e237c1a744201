package process

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// Indexes into the normalised stat fields returned by parseStat.
const (
	statPID  = 0
	statComm = 1
	statPPID = 3
)

// parseStat splits a stat record into fields. The command name is field 1
// with its parentheses removed. It may itself contain spaces and
// parentheses, so the fields are taken after the last closing parenthesis.
// Records without a recognisable command name fall back to a plain
// whitespace split.
func parseStat(record string) []string {
	record = strings.TrimRight(record, "\n")
	open := strings.IndexByte(record, '(')
	end := strings.LastIndexByte(record, ')')
	if open < 0 || end < open {
		fields := strings.Fields(record)
		if len(fields) > statComm {
			fields[statComm] = strings.Trim(fields[statComm], "()")
		}
		return fields
	}

	fields := make([]string, 0, 52)
	fields = append(fields, strings.TrimSpace(record[:open]), record[open+1:end])
	return append(fields, strings.Fields(record[end+1:])...)
}

// parentID parses the parent field, deriving a synthetic id when it is not
// an integer.
func parentID(field string) int {
	if ppid, err := strconv.Atoi(field); err == nil {
		return ppid
	}
	return syntheticID(field)
}

// syntheticID maps text to a deterministic negative id.
func syntheticID(text string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	return -int(h.Sum32()&0x7fffffff) - 1
}
