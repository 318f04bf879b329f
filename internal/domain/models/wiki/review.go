package wiki

// ChangeKind classifies a diff segment.
type ChangeKind string

const (
	ChangeAdded     ChangeKind = "added"
	ChangeRemoved   ChangeKind = "removed"
	ChangeUnchanged ChangeKind = "unchanged"
)

// DiffSegment is a run of consecutive lines sharing one ChangeKind.
type DiffSegment struct {
	Kind ChangeKind `json:"kind"`
	Text string     `json:"text"`
}

// ComparisonContext holds the snapshots an administrator needs to review a request.
// Fields that do not apply to the request kind are nil or empty.
type ComparisonContext struct {
	Request        *EditRequest `json:"request"`
	BaseVersion    *Version     `json:"base_version"`
	LatestVersion  *Version     `json:"latest_version"`
	CurrentSection *Section     `json:"current_section"`
	Siblings       []Section    `json:"siblings"`
}

// Comparisons are the three canonical diffs for a request.
type Comparisons struct {
	ProposedVsLatest []DiffSegment `json:"proposed_vs_latest"`
	ProposedVsBase   []DiffSegment `json:"proposed_vs_base"`
	BaseVsLatest     []DiffSegment `json:"base_vs_latest"`
}

// Review is the full review payload for one request.
type Review struct {
	ComparisonContext
	Comparisons  Comparisons `json:"comparisons"`
	BaseOutdated bool        `json:"base_outdated"`
}

// RequestGroup partitions pending requests for the review list.
type RequestGroup struct {
	SectionID    string         `json:"section_id"` // "new" for the add_section group
	SectionTitle string         `json:"section_title"`
	Requests     []*EditRequest `json:"requests"`
}
