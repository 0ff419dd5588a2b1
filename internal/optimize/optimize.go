// Package optimize rewrites a solved plan for execution quality (spec
// §4.6), grounded on
// original_source/processor/model/optimization.py. Every action type maps
// to a single letter; the plan is viewed as a code string over that
// alphabet and rewritten with two regexes: repeated load/unload-tool
// subsequences are dropped, and a leading probe sequence is promoted to
// the front of the plan.
package optimize

import (
	"regexp"
	"strings"

	"github.com/mars-robotics/buildseq/internal/model"
)

// typeCode maps each action type to the single letter the optimizer's
// regexes operate on. LOAD.EFFECTOR and UNLOAD.EFFECTOR deliberately share
// "E" (spec §9 Open Question — preserved as specified).
var typeCode = map[model.ActionType]byte{
	model.ActionLoadEffector:     'E',
	model.ActionUnloadEffector:   'E',
	model.ActionMoveStationTool:  'T',
	model.ActionMoveStationWork:  'S',
	model.ActionMoveStationHome:  'H',
	model.ActionMoveTCPApproach:  'A',
	model.ActionMoveTCPClearance: 'C',
	model.ActionMoveTCPWork:      'W',
	model.ActionWorkProbe:        'P',
}

// probeSchema matches an optional TE pair followed by SAPC — the
// "approach, probe" subsequence that should run first.
var probeSchema = regexp.MustCompile(`(TE)?SAPC`)

// repetitiveLoadUnloadTool matches a load-then-unload-tool round trip that
// produced no net effect.
var repetitiveLoadUnloadTool = regexp.MustCompile(`TEETEE`)

func codeString(sequence []model.Action) string {
	var b strings.Builder
	b.Grow(len(sequence))
	for _, a := range sequence {
		b.WriteByte(typeCode[a.Type])
	}
	return b.String()
}

// deleteRecursiveLoadUnloadTool drops every TEETEE run from sequence,
// operating on actions directly (not just the code string) so the
// returned slice stays in sync with its own codes.
func deleteRecursiveLoadUnloadTool(sequence []model.Action) []model.Action {
	codes := codeString(sequence)
	matches := repetitiveLoadUnloadTool.FindAllStringIndex(codes, -1)
	if len(matches) == 0 {
		return sequence
	}
	out := make([]model.Action, 0, len(sequence))
	prev := 0
	for _, m := range matches {
		out = append(out, sequence[prev:m[0]]...)
		prev = m[1]
	}
	out = append(out, sequence[prev:]...)
	return out
}

// moveSequenceBySchema finds every run of actions matching schema against
// the code string, removes them from the sequence, runs
// deleteRecursiveLoadUnloadTool on what's left, and reinserts the matched
// runs (in the order found) at toIndex.
func moveSequenceBySchema(schema *regexp.Regexp, sequence []model.Action, toIndex int) []model.Action {
	codes := codeString(sequence)
	matches := schema.FindAllStringIndex(codes, -1)

	var found, other []model.Action
	end := 0
	for _, m := range matches {
		begin := m[0]
		other = append(other, sequence[end:begin]...)
		found = append(found, sequence[begin:m[1]]...)
		end = m[1]
	}
	other = append(other, sequence[end:]...)

	other = deleteRecursiveLoadUnloadTool(other)

	if toIndex > len(other) {
		toIndex = len(other)
	}
	result := make([]model.Action, 0, len(other)+len(found))
	result = append(result, other[:toIndex]...)
	result = append(result, found...)
	result = append(result, other[toIndex:]...)
	return result
}

// BeginWithProbing promotes every (TE)?SAPC run to the front of the plan,
// preserving the order runs were found in, and drops any TEETEE round trip
// left in the remainder. A deletion can join two parts into a new round trip
// or probe run, so the pass repeats until the code string stops changing;
// running it again on its own output is therefore a no-op.
func BeginWithProbing(sequence []model.Action) []model.Action {
	result := moveSequenceBySchema(probeSchema, sequence, 0)
	for {
		next := moveSequenceBySchema(probeSchema, result, 0)
		if codeString(next) == codeString(result) {
			return next
		}
		result = next
	}
}
