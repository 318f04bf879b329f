package wikidiff

import (
	models "agora/internal/domain/models/wiki"
)

// BaseOutdated reports whether the section moved on since the editor started:
// the request recorded a base version and the current latest is a different one.
func BaseOutdated(req *models.EditRequest, latest *models.Version) bool {
	if req == nil || req.BaseVersionID == nil || latest == nil {
		return false
	}
	return latest.ID != *req.BaseVersionID
}

// Compare builds the three canonical comparisons for a request.
//
// A delete proposes empty content, so proposed-vs-latest shows the whole body
// removed. Proposed-vs-base needs a base snapshot and base-vs-latest needs both
// snapshots; otherwise they are empty.
func Compare(cc models.ComparisonContext) models.Comparisons {
	proposed := ""
	if cc.Request != nil && cc.Request.ProposedContent != nil {
		proposed = *cc.Request.ProposedContent
	}
	latest := ""
	if cc.LatestVersion != nil {
		latest = cc.LatestVersion.Content
	}

	out := models.Comparisons{
		ProposedVsLatest: Lines(latest, proposed),
		ProposedVsBase:   []models.DiffSegment{},
		BaseVsLatest:     []models.DiffSegment{},
	}
	if cc.BaseVersion != nil {
		out.ProposedVsBase = Lines(cc.BaseVersion.Content, proposed)
		if cc.LatestVersion != nil {
			out.BaseVsLatest = Lines(cc.BaseVersion.Content, latest)
		}
	}
	return out
}

// Review assembles the full review payload from a comparison context.
func Review(cc models.ComparisonContext) *models.Review {
	return &models.Review{
		ComparisonContext: cc,
		Comparisons:       Compare(cc),
		BaseOutdated:      BaseOutdated(cc.Request, cc.LatestVersion),
	}
}
