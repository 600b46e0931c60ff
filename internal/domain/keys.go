package domain

const (
	CategoryNetworkParticipation = "network_participation"
	CategoryAccumulatedFunds     = "accumulated_funds"
	CategoryVotingEfficiency     = "voting_efficiency"
	CategoryDecentralisation     = "decentralisation"
	CategoryHealthMetrics        = "health_metrics"
)

// CanonicalCategories 是 enhanced metrics 必须返回的五个类别，顺序固定。
var CanonicalCategories = []string{
	CategoryNetworkParticipation,
	CategoryAccumulatedFunds,
	CategoryVotingEfficiency,
	CategoryDecentralisation,
	CategoryHealthMetrics,
}

// SourceCategories 是采集任务从数据文件顶层直接提取的键。
var SourceCategories = []string{
	CategoryNetworkParticipation,
	CategoryHealthMetrics,
	"governance",
	"treasury",
	"token_metrics",
	"proposal_stats",
}

// NestedMetricsKey 下的所有子键都会被当作类别提取。
const NestedMetricsKey = "metrics"
