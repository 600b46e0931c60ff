package aggregator

import "daoportal/internal/domain"

// Summary 是列表页使用的精简字段。
// 类别从未采集时对应字段不存在，类别存在但缺少子键时字段值为 nil。
type Summary map[string]any

var summaryFields = []struct {
	category string
	keys     []string
}{
	{domain.CategoryNetworkParticipation, []string{"participation_rate", "total_members"}},
	{domain.CategoryAccumulatedFunds, []string{"treasury_value_usd"}},
	{domain.CategoryVotingEfficiency, []string{"total_proposals", "approval_rate"}},
	{domain.CategoryHealthMetrics, []string{"network_health_score"}},
}

// Summarize 从类别载荷中抽取摘要字段。
func Summarize(byCategory map[string]domain.Payload) Summary {
	summary := Summary{}
	for _, f := range summaryFields {
		payload, ok := byCategory[f.category]
		if !ok {
			continue
		}
		for _, key := range f.keys {
			summary[key] = payload[key]
		}
	}
	return summary
}
