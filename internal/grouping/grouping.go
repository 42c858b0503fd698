package grouping

import (
	"log/slog"
	"sort"

	"vidsift/internal/logging"
	"vidsift/internal/media/metadata"
	"vidsift/internal/ranking"
	"vidsift/internal/similarity"
)

// Member is one file inside a group, carrying its similarity to the group
// representative and whether that comparison was quality-anomalous.
type Member struct {
	metadata.Record
	// Score is the similarity against the group representative. The
	// representative itself scores 1.
	Score float64
	// Anomalous marks a resolution/bitrate ordering violation against the
	// representative.
	Anomalous bool
}

// Group is a set of records believed to represent the same content.
// Membership is fixed once the partition pass completes; Members are ordered
// highest quality first.
type Group struct {
	ID int
	// Title is the normalized title of the representative, the similarity
	// basis the group formed around.
	Title string
	// RefDuration is the representative's duration in seconds.
	RefDuration float64
	// RepresentativePath identifies the first-inserted member used as the
	// comparison anchor.
	RepresentativePath string
	Members            []Member
}

// IsDuplicate reports whether the group holds more than one member. A
// singleton is trackable but is not a duplicate.
func (g *Group) IsDuplicate() bool { return len(g.Members) >= 2 }

// Keeper returns the highest-ranked member, the default survivor.
func (g *Group) Keeper() Member { return g.Members[0] }

// TotalBytes sums the size of every member.
func (g *Group) TotalBytes() int64 {
	var total int64
	for _, m := range g.Members {
		total += m.SizeBytes
	}
	return total
}

// Engine clusters records using a similarity scorer.
type Engine struct {
	scorer *similarity.Scorer
	logger *slog.Logger
}

// NewEngine builds a grouping engine. A nil logger is replaced with a no-op.
func NewEngine(scorer *similarity.Scorer, logger *slog.Logger) *Engine {
	return &Engine{
		scorer: scorer,
		logger: logging.NewComponentLogger(logger, "grouping"),
	}
}

// Partition clusters the complete record set into groups and ranks each
// group's members. Records are visited in path order, so identical input
// always produces identical groups. Singletons are included; callers filter
// with IsDuplicate as needed.
func (e *Engine) Partition(records []metadata.Record) []*Group {
	ordered := make([]metadata.Record, len(records))
	copy(ordered, records)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Path < ordered[j].Path })

	var groups []*Group
	representatives := make([]metadata.Record, 0, len(ordered))

	for _, record := range ordered {
		placed := false
		for i, rep := range representatives {
			score := e.scorer.Score(rep, record)
			if !score.Candidate {
				continue
			}
			groups[i].Members = append(groups[i].Members, Member{
				Record:    record,
				Score:     score.Value,
				Anomalous: score.Anomalous,
			})
			placed = true
			break
		}
		if placed {
			continue
		}
		groups = append(groups, &Group{
			ID:                 len(groups) + 1,
			Title:              record.NormalizedTitle,
			RefDuration:        record.DurationSeconds,
			RepresentativePath: record.Path,
			Members:            []Member{{Record: record, Score: 1}},
		})
		representatives = append(representatives, record)
	}

	for _, group := range groups {
		rankMembers(group.Members)
		if group.IsDuplicate() {
			e.logger.Debug("formed duplicate group",
				logging.Int("group_id", group.ID),
				logging.String("title", group.Title),
				logging.Int("members", len(group.Members)),
			)
		}
	}
	return groups
}

// Duplicates filters a partition down to groups with two or more members.
func Duplicates(groups []*Group) []*Group {
	out := make([]*Group, 0, len(groups))
	for _, group := range groups {
		if group.IsDuplicate() {
			out = append(out, group)
		}
	}
	return out
}

func rankMembers(members []Member) {
	sort.SliceStable(members, func(i, j int) bool {
		return ranking.Compare(members[i].Record, members[j].Record) < 0
	})
}
