package common

const (
	ComponentWatcher      = "watcher"
	ComponentSource       = "log-source"
	ComponentDecoder      = "decoder"
	ComponentLedger       = "ledger"
	ComponentConfirmation = "confirmation"
	ComponentReorgHandler = "reorg-handler"
	ComponentSink         = "sink"
	ComponentStore        = "store"
	ComponentMetrics      = "metrics"
)

var AllComponents = map[string]struct{}{
	ComponentWatcher:      {},
	ComponentSource:       {},
	ComponentDecoder:      {},
	ComponentLedger:       {},
	ComponentConfirmation: {},
	ComponentReorgHandler: {},
	ComponentSink:         {},
	ComponentStore:        {},
	ComponentMetrics:      {},
}
