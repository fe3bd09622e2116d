package observability

// Metric names
const (
	CommandsExecutedTotal = "harvest_commands_executed_total"
	CommandsFailedTotal   = "harvest_commands_failed_total"
	CacheLookupsTotal     = "harvest_cache_lookups_total"
	WalletWritesTotal     = "harvest_wallet_writes_total"
	WalletWritesBlocked   = "harvest_wallet_writes_blocked_total"
	EventsPublishedTotal  = "harvest_events_published_total"
)

// Label keys
const (
	LabelCommand  = "command"
	LabelKeyspace = "keyspace"
	LabelResult   = "result"
	LabelType     = "type"
)

// Label values
const (
	ResultHit     = "hit"
	ResultMiss    = "miss"
	ResultSuccess = "success"
	ResultFailure = "failure"
)
