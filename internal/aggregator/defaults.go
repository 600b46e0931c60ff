package aggregator

import "daoportal/internal/domain"

// DefaultPayload 返回类别的零值载荷，每次调用都是新的 map。
// 非标准类别返回空 map。
func DefaultPayload(category string) domain.Payload {
	switch category {
	case domain.CategoryNetworkParticipation:
		return domain.Payload{
			"num_distinct_voters": 0,
			"total_members":       0,
			"participation_rate":  0,
			"unique_proposers":    0,
		}
	case domain.CategoryAccumulatedFunds:
		return domain.Payload{
			"treasury_value_usd":           0,
			"circulating_supply":           0,
			"total_supply":                 0,
			"circulating_token_percentage": 0,
			"token_velocity":               0,
		}
	case domain.CategoryVotingEfficiency:
		return domain.Payload{
			"total_proposals":          0,
			"approved_proposals":       0,
			"approval_rate":            0,
			"avg_voting_duration_days": 0,
			"proposal_states":          map[string]any{},
		}
	case domain.CategoryDecentralisation:
		return domain.Payload{
			"largest_holder_percent": 0,
			"on_chain_automation":    "No",
			"token_distribution":     map[string]any{},
			"proposer_concentration": 0,
		}
	case domain.CategoryHealthMetrics:
		return domain.Payload{
			"network_health_score": 0,
			"activity_ratio":       0,
			"total_volume":         0,
			"mean_daily_volume":    0,
		}
	default:
		return domain.Payload{}
	}
}
