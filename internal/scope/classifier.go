package scope

import (
	"github.com/wbd2023/pyscope/internal/workspace"
)

type Action int

const (
	ActionEnable Action = iota
	ActionDisable
)

func (a Action) String() string {
	if a == ActionDisable {
		return "disable"
	}
	return "enable"
}

// Decision is the outcome of classifying one folder. Include is nil when the
// include setting should be removed entirely, which the analyzer treats
// differently from an empty list.
type Decision struct {
	Folder  workspace.Folder
	Count   int
	Limit   int
	Action  Action
	Include []string
	Exclude []string
}

// Classify applies the threshold rule. A count at or under the limit keeps
// the folder enabled with whitelist-style include roots; over the limit the
// folder is disabled by removing the include setting and excluding the whole
// tree. The same excludeDirs drive both the count and the exclude globs, so
// an excluded directory can never tip a folder over the limit.
func Classify(folder workspace.Folder, count, limit int, includeEntries, excludeDirs []string) Decision {
	d := Decision{
		Folder: folder,
		Count:  count,
		Limit:  limit,
	}

	if count > limit {
		d.Action = ActionDisable
		d.Include = nil
		d.Exclude = []string{CatchAllExclude}
		return d
	}

	d.Action = ActionEnable
	d.Include = IncludeGlobs(includeEntries)
	d.Exclude = ExcludeGlobs(excludeDirs)
	return d
}
