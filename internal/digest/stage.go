package digest

type Stage int

const (
	SelectingTickers Stage = iota
	FetchingPerTicker
	Summarizing
	ComposingOverview
	Done
	Errored
)

func (s Stage) String() string {
	switch s {
	case SelectingTickers:
		return "selecting_tickers"
	case FetchingPerTicker:
		return "fetching_per_ticker"
	case Summarizing:
		return "summarizing"
	case ComposingOverview:
		return "composing_overview"
	case Done:
		return "done"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}
