package platforms

import "context"

// HackerRankAdapter is a placeholder until a HackerRank data source is chosen.
// It always fails with NotImplemented; the orchestrator still records the handle.
type HackerRankAdapter struct{}

// NewHackerRank creates the HackerRank placeholder adapter.
func NewHackerRank() *HackerRankAdapter { return &HackerRankAdapter{} }

func (HackerRankAdapter) Platform() Platform { return HackerRank }

func (HackerRankAdapter) Fetch(_ context.Context, handle string) Result {
	return failed(HackerRank, handle, &Failure{Kind: NotImplemented, Reason: "not implemented"})
}

var _ Adapter = HackerRankAdapter{}
